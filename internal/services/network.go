package services

import (
	"context"
	"errors"
	"minelens/internal/hashpower"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/providers"
	"minelens/internal/structures"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

// rewardFractionDigits is how many decimals reward amounts are shown with.
const rewardFractionDigits = 4

const topOwners = 10

// NetworkReport is the network-wide hashpower breakdown at ledger time.
type NetworkReport struct {
	NowTs            int64               `json:"nowTs"`
	BaseHp           uint64              `json:"baseHp,string"`
	RigBuffHp        uint64              `json:"rigBuffHp,string"`
	AccountBonusHp   uint64              `json:"accountBonusHp,string"`
	BuffedHp         uint64              `json:"buffedHp,string"`
	EffectiveHp      uint64              `json:"effectiveHp,string"`
	LocalEffectiveHp uint64              `json:"localEffectiveHp,string"`
	NetworkHpActive  uint64              `json:"networkHpActive,string"`
	ActiveOwners     int                 `json:"activeOwners"`
	MaxOwnerSharePct *float64            `json:"maxOwnerSharePct"`
	TopOwners        []hashpower.OwnerHp `json:"topOwners"`
	Malformed        int                 `json:"malformedSkipped"`
}

// WalletReport is one owner's hashpower at ledger time.
type WalletReport struct {
	Owner           models.PublicKey `json:"owner"`
	NowTs           int64            `json:"nowTs"`
	Level           uint8            `json:"level"`
	LevelBonusBps   uint64           `json:"levelBonusBps"`
	Positions       int              `json:"positions"`
	ActivePositions int              `json:"activePositions"`
	BaseHp          uint64           `json:"baseHp,string"`
	BuffedHp        uint64           `json:"buffedHp,string"`
	AccountBonusHp  uint64           `json:"accountBonusHp,string"`
	EffectiveHp     uint64           `json:"effectiveHp,string"`
	NetworkHpActive uint64           `json:"networkHpActive,string"`
}

// RewardEstimate is a wallet's pending reward for the current epoch.
type RewardEstimate struct {
	Owner            models.PublicKey `json:"owner"`
	NowTs            int64            `json:"nowTs"`
	Epoch            uint64           `json:"epoch"`
	Available        bool             `json:"available"`
	Reason           string           `json:"reason,omitempty"`
	EpochStartTs     int64            `json:"epochStartTs,omitempty"`
	EpochEndTs       int64            `json:"epochEndTs,omitempty"`
	Finalized        bool             `json:"finalized"`
	Claimed          bool             `json:"claimed"`
	UserMp           string           `json:"userMp"`
	TotalEffectiveMp string           `json:"totalEffectiveMp"`
	Reward           uint64           `json:"reward,string"`
	RewardDisplay    string           `json:"rewardDisplay"`
}

type NetworkServiceInterface interface {
	ComputeNetworkAggregate(ctx context.Context) (*NetworkReport, error)
	WalletHashpower(ctx context.Context, owner models.PublicKey) (*WalletReport, error)
	EstimateReward(ctx context.Context, owner models.PublicKey) (*RewardEstimate, error)
}

type NetworkService struct {
	loader    *SnapshotLoader
	source    ledger.Source
	addresses *ledger.Addresses
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	wallets   *expirable.LRU[models.PublicKey, *WalletReport]
}

func NewNetworkService(loader *SnapshotLoader, source ledger.Source, addresses *ledger.Addresses, logger providers.Logger, metrics providers.MetricsProviderInterface, conf *structures.Config) NetworkServiceInterface {
	size := conf.Wallet.CacheSize
	if size <= 0 {
		size = 1024
	}
	ttl := conf.Wallet.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &NetworkService{
		loader:    loader,
		source:    source,
		addresses: addresses,
		logger:    logger,
		metrics:   metrics,
		wallets:   expirable.NewLRU[models.PublicKey, *WalletReport](size, nil, ttl),
	}
}

func (s *NetworkService) ComputeNetworkAggregate(ctx context.Context) (*NetworkReport, error) {
	snap, err := s.loader.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	agg, err := hashpower.NetworkAggregate(snap.Positions, snap.Profiles, snap.NowTs, hashpower.ParamsFromConfig(snap.Config))
	if err != nil {
		return nil, err
	}
	s.metrics.SetNetworkEffectiveHp(agg.EffectiveSum)

	report := &NetworkReport{
		NowTs:            snap.NowTs,
		BaseHp:           agg.BaseSum,
		RigBuffHp:        agg.BuffSum - agg.BaseSum,
		BuffedHp:         agg.BuffSum,
		EffectiveHp:      agg.EffectiveSum,
		LocalEffectiveHp: agg.LocalEffectiveSum,
		NetworkHpActive:  agg.Floor,
		ActiveOwners:     len(agg.Owners),
		MaxOwnerSharePct: agg.MaxOwnerSharePct(),
		TopOwners:        agg.Owners[:min(topOwners, len(agg.Owners))],
		Malformed:        snap.Malformed,
	}
	if agg.EffectiveSum > agg.BuffSum {
		report.AccountBonusHp = agg.EffectiveSum - agg.BuffSum
	}
	if snap.Malformed > 0 {
		s.logger.Warnf(providers.TypeLedger, "Network aggregate skipped %d malformed accounts", snap.Malformed)
	}
	return report, nil
}

// WalletHashpower replays only the owner's positions. Reports are cached per
// owner for a short TTL.
func (s *NetworkService) WalletHashpower(ctx context.Context, owner models.PublicKey) (*WalletReport, error) {
	if cached, ok := s.wallets.Get(owner); ok {
		return cached, nil
	}

	snap, err := s.loader.Load(ctx, &owner)
	if err != nil {
		return nil, err
	}
	params := hashpower.ParamsFromConfig(snap.Config)
	level := hashpower.LevelsByOwner(snap.Profiles)[owner]
	if level == 0 {
		level = 1
	}

	report := &WalletReport{
		Owner:           owner,
		NowTs:           snap.NowTs,
		Level:           level,
		LevelBonusBps:   hashpower.LevelBonusBps(level),
		NetworkHpActive: params.NetworkHpActive,
		Positions:       len(snap.Positions),
	}
	for i := range snap.Positions {
		if snap.Positions[i].ActiveAt(snap.NowTs) {
			report.ActivePositions++
		}
	}

	// the scan is owner-filtered, so the local totals are this owner's alone
	agg, err := hashpower.NetworkTotals(snap.Positions, map[models.PublicKey]uint8{owner: level}, snap.NowTs,
		hashpower.Params{SecondsPerDay: params.SecondsPerDay})
	if err != nil {
		return nil, err
	}
	report.BaseHp = agg.BaseSum
	report.BuffedHp = agg.BuffSum
	report.EffectiveHp = agg.LocalEffectiveSum
	report.AccountBonusHp = agg.LocalEffectiveSum - agg.BuffSum

	s.wallets.Add(owner, report)
	return report, nil
}

// EstimateReward reads the current epoch and the owner's epoch record. When
// either is missing the estimate is zero and marked unavailable.
func (s *NetworkService) EstimateReward(ctx context.Context, owner models.PublicKey) (*RewardEstimate, error) {
	var (
		cfg   *models.ProtocolConfig
		nowTs int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cfg, err = s.loader.LoadConfig(gctx)
		return err
	})
	g.Go(func() (err error) {
		nowTs, err = s.source.ReadClockSeconds(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	est := &RewardEstimate{Owner: owner, NowTs: nowTs, UserMp: "0", TotalEffectiveMp: "0", RewardDisplay: "0"}

	epoch, err := hashpower.CurrentEpoch(cfg.EmissionStartTs, cfg.EpochSeconds, nowTs)
	if errors.Is(err, hashpower.ErrEpochNotStarted) {
		est.Reason = err.Error()
		return est, nil
	}
	if err != nil {
		return nil, err
	}
	est.Epoch = epoch

	epochAddr, err := s.addresses.EpochState(epoch)
	if err != nil {
		return nil, err
	}
	userAddr, err := s.addresses.UserEpoch(owner, epoch)
	if err != nil {
		return nil, err
	}

	var epochData, userData []byte
	var epochFound, userFound bool
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		epochData, epochFound, err = s.source.ReadAccount(gctx, epochAddr)
		return err
	})
	g.Go(func() (err error) {
		userData, userFound, err = s.source.ReadAccount(gctx, userAddr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !epochFound {
		est.Reason = "epoch state not initialized"
		return est, nil
	}
	epochState, err := models.DecodeEpochState(epochData)
	if err != nil {
		return nil, err
	}
	est.EpochStartTs = epochState.StartTs
	est.EpochEndTs = epochState.EndTs
	est.Finalized = epochState.Finalized
	est.TotalEffectiveMp = epochState.TotalEffectiveMp.String()

	if !userFound {
		est.Reason = "no mining power recorded for this epoch"
		return est, nil
	}
	userEpoch, err := models.DecodeUserEpoch(userData)
	if err != nil {
		return nil, err
	}
	est.Claimed = userEpoch.Claimed
	est.UserMp = userEpoch.UserMp.String()

	reward, err := hashpower.EstimatedReward(hashpower.RewardInputs{
		DailyEmission:    epochState.DailyEmission,
		TotalEffectiveMp: epochState.TotalEffectiveMp,
		UserMp:           userEpoch.UserMp,
		MpCapBps:         cfg.MpCapBpsPerWallet,
		MinedCap:         cfg.MinedCap,
		MinedTotal:       cfg.MinedTotal,
	})
	if err != nil {
		return nil, err
	}
	est.Available = true
	est.Reward = reward
	est.RewardDisplay = hashpower.FormatTokenAmount(reward, cfg.MindDecimals, rewardFractionDigits)
	return est, nil
}
