package models

import (
	"fmt"
	"sort"
)

type AccountKind uint8

const (
	KindMinerPosition AccountKind = iota + 1
	KindUserProfile
	KindProtocolConfig
	KindEpochState
	KindUserEpoch
	KindStakingPosition
	KindVaultPosition
	KindClock
)

func (k AccountKind) String() string {
	switch k {
	case KindMinerPosition:
		return "MinerPosition"
	case KindUserProfile:
		return "UserProfile"
	case KindProtocolConfig:
		return "ProtocolConfig"
	case KindEpochState:
		return "EpochState"
	case KindUserEpoch:
		return "UserEpoch"
	case KindStakingPosition:
		return "StakingPosition"
	case KindVaultPosition:
		return "VaultPosition"
	case KindClock:
		return "Clock"
	default:
		return fmt.Sprintf("AccountKind(%d)", uint8(k))
	}
}

type LayoutVersion uint8

const (
	V1 LayoutVersion = 1
	V2 LayoutVersion = 2
)

func (v LayoutVersion) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}

// HeaderSize is the discriminator prefix carried by every program-owned account.
const HeaderSize = 8

// OwnerOffset is where the owner key sits in every owner-bearing layout.
const OwnerOffset = HeaderSize

const (
	MinerPositionV1Size  = 92
	MinerPositionV2Size  = 94
	UserProfileV1Size    = 50
	UserProfileV2Size    = 58
	ProtocolConfigV1Size = 233
	ProtocolConfigV2Size = 257
	EpochStateSize       = 58
	UserEpochSize        = 66
	StakingPositionSize  = 85
	VaultPositionSize    = 93
	ClockSize            = 40
)

type layoutKey struct {
	kind    AccountKind
	version LayoutVersion
}

var layoutSizes = map[layoutKey]int{
	{KindMinerPosition, V1}:   MinerPositionV1Size,
	{KindMinerPosition, V2}:   MinerPositionV2Size,
	{KindUserProfile, V1}:     UserProfileV1Size,
	{KindUserProfile, V2}:     UserProfileV2Size,
	{KindProtocolConfig, V1}:  ProtocolConfigV1Size,
	{KindProtocolConfig, V2}:  ProtocolConfigV2Size,
	{KindEpochState, V1}:      EpochStateSize,
	{KindUserEpoch, V1}:       UserEpochSize,
	{KindStakingPosition, V1}: StakingPositionSize,
	{KindVaultPosition, V1}:   VaultPositionSize,
	{KindClock, V1}:           ClockSize,
}

// LayoutSize returns the declared byte length of a layout.
func LayoutSize(kind AccountKind, version LayoutVersion) (int, error) {
	size, ok := layoutSizes[layoutKey{kind, version}]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s", ErrUnknownLayout, kind, version)
	}
	return size, nil
}

// DetectVersion maps an exact account length to the layout version that declares it.
func DetectVersion(kind AccountKind, size int) (LayoutVersion, error) {
	for key, declared := range layoutSizes {
		if key.kind == kind && declared == size {
			return key.version, nil
		}
	}
	return 0, fmt.Errorf("%w: %s with %d bytes", ErrUnknownLayout, kind, size)
}

// Versions lists the known layout versions of a kind in ascending order.
func Versions(kind AccountKind) []LayoutVersion {
	var out []LayoutVersion
	for key := range layoutSizes {
		if key.kind == kind {
			out = append(out, key.version)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
