package models

// MinerPosition is the canonical form of both on-chain position layouts.
// V1 accounts carry no stored rig type; HpScaled is false for them and the
// rig type has to be inferred from the position window.
type MinerPosition struct {
	Owner                PublicKey `json:"owner"`
	PositionIndex        uint64    `json:"positionIndex"`
	Hp                   uint64    `json:"hp,string"`
	StartTs              int64     `json:"startTs"`
	EndTs                int64     `json:"endTs"`
	LastHeartbeatTs      int64     `json:"lastHeartbeatTs"`
	RigType              uint8     `json:"rigType"`
	BuffLevel            uint8     `json:"buffLevel"`
	BuffAppliedFromCycle uint64    `json:"buffAppliedFromCycle"`
	HpScaled             bool      `json:"hpScaled"`
	Deactivated          bool      `json:"deactivated"`
	Expired              bool      `json:"expired"`
	Bump                 uint8     `json:"bump"`

	Version LayoutVersion `json:"version"`
}

func (p *MinerPosition) Kind() AccountKind { return KindMinerPosition }

// ActiveAt reports whether the position counts toward aggregates at ts.
func (p *MinerPosition) ActiveAt(ts int64) bool {
	if p.Deactivated || p.Expired {
		return false
	}
	return p.StartTs <= ts && ts < p.EndTs
}

// BuffActiveAt reports whether the stored buff gate has opened at ts.
func (p *MinerPosition) BuffActiveAt(ts int64) bool {
	if p.BuffLevel == 0 {
		return false
	}
	if p.BuffAppliedFromCycle == 0 {
		return true
	}
	return ts >= 0 && uint64(ts) >= p.BuffAppliedFromCycle
}

func DecodeMinerPosition(data []byte, version LayoutVersion) (*MinerPosition, error) {
	r, err := newAccountReader(data, KindMinerPosition, version, HeaderSize)
	if err != nil {
		return nil, err
	}

	p := &MinerPosition{Version: version}
	p.Owner = r.pubkey()
	p.PositionIndex = r.u64()
	p.Hp = r.u64()
	p.StartTs = r.i64()
	p.EndTs = r.i64()
	p.LastHeartbeatTs = r.i64()

	switch version {
	case V1:
		p.BuffLevel = r.u8()
		p.BuffAppliedFromCycle = r.u64()
	case V2:
		p.RigType = r.u8()
		p.BuffLevel = r.u8()
		p.BuffAppliedFromCycle = r.u64()
		p.HpScaled = r.boolean()
	}

	p.Deactivated = r.boolean()
	p.Expired = r.boolean()
	p.Bump = r.u8()
	return p, nil
}
