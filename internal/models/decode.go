package models

import "fmt"

// Record is any decoded account.
type Record interface {
	Kind() AccountKind
}

// Clock is the ledger clock sysvar. It has no discriminator header.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func (c *Clock) Kind() AccountKind { return KindClock }

func DecodeClock(data []byte) (*Clock, error) {
	r, err := newAccountReader(data, KindClock, V1, 0)
	if err != nil {
		return nil, err
	}

	c := &Clock{}
	c.Slot = r.u64()
	c.EpochStartTimestamp = r.i64()
	c.Epoch = r.u64()
	c.LeaderScheduleEpoch = r.u64()
	c.UnixTimestamp = r.i64()
	return c, nil
}

// Decode dispatches to the decoder registered for (kind, version).
func Decode(data []byte, kind AccountKind, version LayoutVersion) (Record, error) {
	if _, err := LayoutSize(kind, version); err != nil {
		return nil, err
	}

	switch kind {
	case KindMinerPosition:
		return record(DecodeMinerPosition(data, version))
	case KindUserProfile:
		return record(DecodeUserProfile(data, version))
	case KindProtocolConfig:
		return record(DecodeProtocolConfig(data, version))
	case KindEpochState:
		return record(DecodeEpochState(data))
	case KindUserEpoch:
		return record(DecodeUserEpoch(data))
	case KindStakingPosition:
		return record(DecodeStakingPosition(data))
	case KindVaultPosition:
		return record(DecodeVaultPosition(data))
	case KindClock:
		return record(DecodeClock(data))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, kind)
}

func record[T Record](rec T, err error) (Record, error) {
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeBySize picks the version from the exact account length, then decodes.
func DecodeBySize(data []byte, kind AccountKind) (Record, error) {
	version, err := DetectVersion(kind, len(data))
	if err != nil {
		return nil, err
	}
	return Decode(data, kind, version)
}
