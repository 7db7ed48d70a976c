package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"minelens/internal/models"
	"minelens/internal/structures"

	"filippo.io/edwards25519"
)

const maxSeedLen = 32

var (
	ErrNoViableBump = errors.New("unable to find a viable program address bump")
	ErrSeedTooLong  = errors.New("seed exceeds 32 bytes")
)

// ClockSysvar is the well-known address of the clock sysvar account.
var ClockSysvar = models.MustPublicKey("SysvarC1ock11111111111111111111111111111111")

// FindProgramAddress returns the first off-curve address derived from seeds,
// searching bumps from 255 downwards.
func FindProgramAddress(seeds [][]byte, programID models.PublicKey) (models.PublicKey, uint8, error) {
	for _, seed := range seeds {
		if len(seed) > maxSeedLen {
			return models.PublicKey{}, 0, ErrSeedTooLong
		}
	}
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programID[:])
		h.Write([]byte("ProgramDerivedAddress"))

		var candidate models.PublicKey
		copy(candidate[:], h.Sum(nil))
		if !onCurve(candidate) {
			return candidate, uint8(bump), nil
		}
	}
	return models.PublicKey{}, 0, ErrNoViableBump
}

func onCurve(pk models.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}

// Addresses derives the program's well-known account addresses.
type Addresses struct {
	ProgramID models.PublicKey
}

func NewAddresses(conf *structures.Config) (*Addresses, error) {
	programID, err := models.PublicKeyFromBase58(conf.Ledger.ProgramID)
	if err != nil {
		return nil, err
	}
	return &Addresses{ProgramID: programID}, nil
}

func (a *Addresses) Config() (models.PublicKey, error) {
	pk, _, err := FindProgramAddress([][]byte{[]byte("config")}, a.ProgramID)
	return pk, err
}

func (a *Addresses) EpochState(epoch uint64) (models.PublicKey, error) {
	pk, _, err := FindProgramAddress([][]byte{[]byte("epoch"), le64(epoch)}, a.ProgramID)
	return pk, err
}

func (a *Addresses) UserEpoch(owner models.PublicKey, epoch uint64) (models.PublicKey, error) {
	pk, _, err := FindProgramAddress([][]byte{[]byte("user_epoch"), owner[:], le64(epoch)}, a.ProgramID)
	return pk, err
}

func le64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}
