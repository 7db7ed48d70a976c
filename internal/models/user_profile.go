package models

type UserProfile struct {
	Owner             PublicKey     `json:"owner"`
	Level             uint8         `json:"level"`
	Xp                uint64        `json:"xp"`
	NextPositionIndex uint64        `json:"nextPositionIndex"`
	Bump              uint8         `json:"bump"`
	Version           LayoutVersion `json:"version"`
}

func (p *UserProfile) Kind() AccountKind { return KindUserProfile }

// DecodeUserProfile normalizes an unset level (0) to level 1.
func DecodeUserProfile(data []byte, version LayoutVersion) (*UserProfile, error) {
	r, err := newAccountReader(data, KindUserProfile, version, HeaderSize)
	if err != nil {
		return nil, err
	}

	p := &UserProfile{Version: version}
	p.Owner = r.pubkey()
	p.Level = r.u8()
	if version == V2 {
		p.Xp = r.u64()
	}
	p.NextPositionIndex = r.u64()
	p.Bump = r.u8()

	if p.Level == 0 {
		p.Level = 1
	}
	return p, nil
}
