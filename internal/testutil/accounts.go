package testutil

import (
	"encoding/binary"
	"minelens/internal/models"

	"lukechampine.com/uint128"
)

// accountWriter builds account fixtures in the on-chain byte layout.
type accountWriter struct {
	buf []byte
}

func newAccountWriter(header bool) *accountWriter {
	w := &accountWriter{}
	if header {
		w.buf = append(w.buf, 1, 2, 3, 4, 5, 6, 7, 8)
	}
	return w
}

func (w *accountWriter) u8(v uint8) *accountWriter {
	w.buf = append(w.buf, v)
	return w
}

func (w *accountWriter) boolean(v bool) *accountWriter {
	if v {
		return w.u8(1)
	}
	return w.u8(0)
}

func (w *accountWriter) u16(v uint16) *accountWriter {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *accountWriter) u64(v uint64) *accountWriter {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *accountWriter) i64(v int64) *accountWriter {
	return w.u64(uint64(v))
}

func (w *accountWriter) u128(v uint128.Uint128) *accountWriter {
	return w.u64(v.Lo).u64(v.Hi)
}

func (w *accountWriter) pubkey(pk models.PublicKey) *accountWriter {
	w.buf = append(w.buf, pk[:]...)
	return w
}

// Key returns a deterministic public key whose bytes are all b.
func Key(b byte) models.PublicKey {
	var pk models.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func EncodeMinerPosition(p models.MinerPosition, version models.LayoutVersion) []byte {
	w := newAccountWriter(true).
		pubkey(p.Owner).
		u64(p.PositionIndex).
		u64(p.Hp).
		i64(p.StartTs).
		i64(p.EndTs).
		i64(p.LastHeartbeatTs)
	if version == models.V2 {
		w.u8(p.RigType).u8(p.BuffLevel).u64(p.BuffAppliedFromCycle).boolean(p.HpScaled)
	} else {
		w.u8(p.BuffLevel).u64(p.BuffAppliedFromCycle)
	}
	return w.boolean(p.Deactivated).boolean(p.Expired).u8(p.Bump).buf
}

func EncodeUserProfile(p models.UserProfile, version models.LayoutVersion) []byte {
	w := newAccountWriter(true).pubkey(p.Owner).u8(p.Level)
	if version == models.V2 {
		w.u64(p.Xp)
	}
	return w.u64(p.NextPositionIndex).u8(p.Bump).buf
}

func EncodeProtocolConfig(c models.ProtocolConfig, version models.LayoutVersion) []byte {
	w := newAccountWriter(true).
		pubkey(c.Admin).
		pubkey(c.XntMint).
		pubkey(c.MindMint).
		pubkey(c.VaultXntAta).
		u8(c.MindDecimals).
		u8(c.XntDecimals).
		u64(c.DailyEmissionInitial).
		u64(c.DailyEmissionCurrent).
		u64(c.EpochSeconds).
		u64(c.SoftHalvingPeriodDays).
		u16(c.SoftHalvingBpsDrop).
		i64(c.EmissionStartTs).
		i64(c.LastEpochTs).
		u64(c.MinedTotal).
		u64(c.MinedCap).
		u64(c.TotalSupplyMind).
		u16(c.MpCapBpsPerWallet).
		u64(c.Th1).
		u64(c.Th2).
		boolean(c.AllowEpochSecondsEdit).
		u8(c.Bump).
		u8(c.VaultAuthorityBump)
	if version == models.V2 {
		w.u64(c.SecondsPerDay).u64(c.NetworkHpActive).u64(c.StakingWeightedTotal)
	}
	return w.buf
}

func EncodeEpochState(e models.EpochState) []byte {
	return newAccountWriter(true).
		u64(e.EpochIndex).
		i64(e.StartTs).
		i64(e.EndTs).
		u128(e.TotalEffectiveMp).
		u64(e.DailyEmission).
		boolean(e.Finalized).
		u8(e.Bump).buf
}

func EncodeUserEpoch(u models.UserEpoch) []byte {
	return newAccountWriter(true).
		pubkey(u.Owner).
		u64(u.EpochIndex).
		u128(u.UserMp).
		boolean(u.Claimed).
		u8(u.Bump).buf
}

func EncodeStakingPosition(s models.StakingPosition) []byte {
	return newAccountWriter(true).
		pubkey(s.Owner).
		u64(s.Amount).
		i64(s.StartTs).
		u16(s.DurationDays).
		u16(s.XpBoostBps).
		i64(s.LastClaimTs).
		u128(s.RewardDebt).
		u8(s.Bump).buf
}

func EncodeVaultPosition(v models.VaultPosition) []byte {
	return newAccountWriter(true).
		pubkey(v.Owner).
		u64(v.LockedAmount).
		i64(v.LockStartTs).
		i64(v.LockEndTs).
		u16(v.DurationDays).
		u16(v.TimeMultiplierBps).
		u64(v.LastActiveEpoch).
		u64(v.AccruedOwed).
		u64(v.LastClaimedEpoch).
		u8(v.Bump).buf
}

func EncodeClock(c models.Clock) []byte {
	return newAccountWriter(false).
		u64(c.Slot).
		i64(c.EpochStartTimestamp).
		u64(c.Epoch).
		u64(c.LeaderScheduleEpoch).
		i64(c.UnixTimestamp).buf
}
