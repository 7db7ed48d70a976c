package models

import "lukechampine.com/uint128"

type EpochState struct {
	EpochIndex       uint64          `json:"epochIndex"`
	StartTs          int64           `json:"startTs"`
	EndTs            int64           `json:"endTs"`
	TotalEffectiveMp uint128.Uint128 `json:"-"`
	DailyEmission    uint64          `json:"dailyEmission,string"`
	Finalized        bool            `json:"finalized"`
	Bump             uint8           `json:"bump"`
}

func (e *EpochState) Kind() AccountKind { return KindEpochState }

func DecodeEpochState(data []byte) (*EpochState, error) {
	r, err := newAccountReader(data, KindEpochState, V1, HeaderSize)
	if err != nil {
		return nil, err
	}

	e := &EpochState{}
	e.EpochIndex = r.u64()
	e.StartTs = r.i64()
	e.EndTs = r.i64()
	e.TotalEffectiveMp = r.u128()
	e.DailyEmission = r.u64()
	e.Finalized = r.boolean()
	e.Bump = r.u8()
	return e, nil
}

type UserEpoch struct {
	Owner      PublicKey       `json:"owner"`
	EpochIndex uint64          `json:"epochIndex"`
	UserMp     uint128.Uint128 `json:"-"`
	Claimed    bool            `json:"claimed"`
	Bump       uint8           `json:"bump"`
}

func (u *UserEpoch) Kind() AccountKind { return KindUserEpoch }

func DecodeUserEpoch(data []byte) (*UserEpoch, error) {
	r, err := newAccountReader(data, KindUserEpoch, V1, HeaderSize)
	if err != nil {
		return nil, err
	}

	u := &UserEpoch{}
	u.Owner = r.pubkey()
	u.EpochIndex = r.u64()
	u.UserMp = r.u128()
	u.Claimed = r.boolean()
	u.Bump = r.u8()
	return u, nil
}
