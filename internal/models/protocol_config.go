package models

// DefaultSecondsPerDay applies to config layouts that predate the stored field.
const DefaultSecondsPerDay = 86400

type ProtocolConfig struct {
	Admin                 PublicKey `json:"admin"`
	XntMint               PublicKey `json:"xntMint"`
	MindMint              PublicKey `json:"mindMint"`
	VaultXntAta           PublicKey `json:"vaultXntAta"`
	MindDecimals          uint8     `json:"mindDecimals"`
	XntDecimals           uint8     `json:"xntDecimals"`
	DailyEmissionInitial  uint64    `json:"dailyEmissionInitial,string"`
	DailyEmissionCurrent  uint64    `json:"dailyEmissionCurrent,string"`
	EpochSeconds          uint64    `json:"epochSeconds"`
	SoftHalvingPeriodDays uint64    `json:"softHalvingPeriodDays"`
	SoftHalvingBpsDrop    uint16    `json:"softHalvingBpsDrop"`
	EmissionStartTs       int64     `json:"emissionStartTs"`
	LastEpochTs           int64     `json:"lastEpochTs"`
	MinedTotal            uint64    `json:"minedTotal,string"`
	MinedCap              uint64    `json:"minedCap,string"`
	TotalSupplyMind       uint64    `json:"totalSupplyMind,string"`
	MpCapBpsPerWallet     uint16    `json:"mpCapBpsPerWallet"`
	Th1                   uint64    `json:"th1,string"`
	Th2                   uint64    `json:"th2,string"`
	AllowEpochSecondsEdit bool      `json:"allowEpochSecondsEdit"`
	Bump                  uint8     `json:"bump"`
	VaultAuthorityBump    uint8     `json:"vaultAuthorityBump"`
	SecondsPerDay         uint64    `json:"secondsPerDay"`
	NetworkHpActive       uint64    `json:"networkHpActive,string"`
	StakingWeightedTotal  uint64    `json:"stakingWeightedTotal,string"`

	Version LayoutVersion `json:"version"`
}

func (c *ProtocolConfig) Kind() AccountKind { return KindProtocolConfig }

// RemainingMintable is what may still be minted before the cap, floored at zero.
func (c *ProtocolConfig) RemainingMintable() uint64 {
	if c.MinedTotal >= c.MinedCap {
		return 0
	}
	return c.MinedCap - c.MinedTotal
}

func DecodeProtocolConfig(data []byte, version LayoutVersion) (*ProtocolConfig, error) {
	r, err := newAccountReader(data, KindProtocolConfig, version, HeaderSize)
	if err != nil {
		return nil, err
	}

	c := &ProtocolConfig{Version: version}
	c.Admin = r.pubkey()
	c.XntMint = r.pubkey()
	c.MindMint = r.pubkey()
	c.VaultXntAta = r.pubkey()
	c.MindDecimals = r.u8()
	c.XntDecimals = r.u8()
	c.DailyEmissionInitial = r.u64()
	c.DailyEmissionCurrent = r.u64()
	c.EpochSeconds = r.u64()
	c.SoftHalvingPeriodDays = r.u64()
	c.SoftHalvingBpsDrop = r.u16()
	c.EmissionStartTs = r.i64()
	c.LastEpochTs = r.i64()
	c.MinedTotal = r.u64()
	c.MinedCap = r.u64()
	c.TotalSupplyMind = r.u64()
	c.MpCapBpsPerWallet = r.u16()
	c.Th1 = r.u64()
	c.Th2 = r.u64()
	c.AllowEpochSecondsEdit = r.boolean()
	c.Bump = r.u8()
	c.VaultAuthorityBump = r.u8()

	c.SecondsPerDay = DefaultSecondsPerDay
	if version == V2 {
		c.SecondsPerDay = r.u64()
		c.NetworkHpActive = r.u64()
		c.StakingWeightedTotal = r.u64()
	}
	return c, nil
}
