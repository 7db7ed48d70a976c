package models

import "lukechampine.com/uint128"

type StakingPosition struct {
	Owner        PublicKey
	Amount       uint64
	StartTs      int64
	DurationDays uint16
	XpBoostBps   uint16
	LastClaimTs  int64
	RewardDebt   uint128.Uint128
	Bump         uint8
}

func (s *StakingPosition) Kind() AccountKind { return KindStakingPosition }

func DecodeStakingPosition(data []byte) (*StakingPosition, error) {
	r, err := newAccountReader(data, KindStakingPosition, V1, HeaderSize)
	if err != nil {
		return nil, err
	}

	s := &StakingPosition{}
	s.Owner = r.pubkey()
	s.Amount = r.u64()
	s.StartTs = r.i64()
	s.DurationDays = r.u16()
	s.XpBoostBps = r.u16()
	s.LastClaimTs = r.i64()
	s.RewardDebt = r.u128()
	s.Bump = r.u8()
	return s, nil
}

// VaultPosition is the legacy time-locked vault position that predates staking.
type VaultPosition struct {
	Owner             PublicKey
	LockedAmount      uint64
	LockStartTs       int64
	LockEndTs         int64
	DurationDays      uint16
	TimeMultiplierBps uint16
	LastActiveEpoch   uint64
	AccruedOwed       uint64
	LastClaimedEpoch  uint64
	Bump              uint8
}

func (v *VaultPosition) Kind() AccountKind { return KindVaultPosition }

func DecodeVaultPosition(data []byte) (*VaultPosition, error) {
	r, err := newAccountReader(data, KindVaultPosition, V1, HeaderSize)
	if err != nil {
		return nil, err
	}

	v := &VaultPosition{}
	v.Owner = r.pubkey()
	v.LockedAmount = r.u64()
	v.LockStartTs = r.i64()
	v.LockEndTs = r.i64()
	v.DurationDays = r.u16()
	v.TimeMultiplierBps = r.u16()
	v.LastActiveEpoch = r.u64()
	v.AccruedOwed = r.u64()
	v.LastClaimedEpoch = r.u64()
	v.Bump = r.u8()
	return v, nil
}
