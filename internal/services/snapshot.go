package services

import (
	"context"
	"errors"
	"fmt"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/providers"
	"minelens/internal/structures"

	hex "github.com/tmthrgd/go-hex"
	"golang.org/x/sync/errgroup"
)

var (
	ErrConfigMissing = errors.New("protocol config account not found")
	ErrJobRunning    = errors.New("recompute already running")
)

// Snapshot is one consistent read of everything the hashpower engine needs.
type Snapshot struct {
	Config    *models.ProtocolConfig
	NowTs     int64
	Positions []models.MinerPosition
	// Profiles holds V1 profiles before V2 ones so later entries win per owner.
	Profiles  []models.UserProfile
	Malformed int
}

// SnapshotLoader reads and decodes program accounts from the ledger.
type SnapshotLoader struct {
	source    ledger.Source
	addresses *ledger.Addresses
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	retry     ledger.RetryConfig
}

func NewSnapshotLoader(source ledger.Source, addresses *ledger.Addresses, logger providers.Logger, metrics providers.MetricsProviderInterface, conf *structures.Config) *SnapshotLoader {
	return &SnapshotLoader{
		source:    source,
		addresses: addresses,
		logger:    logger,
		metrics:   metrics,
		retry:     ledger.RetryConfigFrom(conf),
	}
}

// LoadConfig reads the protocol config account. Its absence is fatal.
func (l *SnapshotLoader) LoadConfig(ctx context.Context) (*models.ProtocolConfig, error) {
	address, err := l.addresses.Config()
	if err != nil {
		return nil, err
	}
	data, found, err := l.source.ReadAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w at %s", ErrConfigMissing, address)
	}
	return models.DecodeProtocolConfig(data, configVersion(len(data)))
}

// configVersion picks the newest layout that fits; an account smaller than
// every layout falls through to V1 and fails as malformed.
func configVersion(size int) models.LayoutVersion {
	version := models.V1
	for _, v := range models.Versions(models.KindProtocolConfig) {
		if n, _ := models.LayoutSize(models.KindProtocolConfig, v); size >= n {
			version = v
		}
	}
	return version
}

// Load reads config, clock, positions and profiles concurrently. With a
// non-nil owner only that owner's positions and profiles are scanned.
func (l *SnapshotLoader) Load(ctx context.Context, owner *models.PublicKey) (*Snapshot, error) {
	snap := &Snapshot{}
	var posV1, posV2 []models.MinerPosition
	var profV1, profV2 []models.UserProfile
	var badP1, badP2, badU1, badU2 int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Config, err = l.LoadConfig(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.NowTs, err = l.source.ReadClockSeconds(gctx)
		return err
	})
	g.Go(func() (err error) {
		posV1, badP1, err = scanDecoded(gctx, l, models.KindMinerPosition, models.V1, owner, models.DecodeMinerPosition)
		return err
	})
	g.Go(func() (err error) {
		posV2, badP2, err = scanDecoded(gctx, l, models.KindMinerPosition, models.V2, owner, models.DecodeMinerPosition)
		return err
	})
	g.Go(func() (err error) {
		profV1, badU1, err = scanDecoded(gctx, l, models.KindUserProfile, models.V1, owner, models.DecodeUserProfile)
		return err
	})
	g.Go(func() (err error) {
		profV2, badU2, err = scanDecoded(gctx, l, models.KindUserProfile, models.V2, owner, models.DecodeUserProfile)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Positions = append(posV1, posV2...)
	snap.Profiles = append(profV1, profV2...)
	snap.Malformed = badP1 + badP2 + badU1 + badU2
	return snap, nil
}

// ScanStaking returns every staking position, retrying the scan with backoff.
func (l *SnapshotLoader) ScanStaking(ctx context.Context) ([]models.StakingPosition, int, error) {
	var (
		positions []models.StakingPosition
		malformed int
	)
	err := ledger.RetryWithBackoff(ctx, l.retry, l.logger, "staking scan", func() (err error) {
		positions, malformed, err = scanDecoded(ctx, l, models.KindStakingPosition, models.V1, nil,
			func(data []byte, _ models.LayoutVersion) (*models.StakingPosition, error) {
				return models.DecodeStakingPosition(data)
			})
		return err
	})
	return positions, malformed, err
}

// scanDecoded scans one exact layout size and decodes every account. Malformed
// accounts are skipped, counted and logged; any other failure aborts.
func scanDecoded[T any](ctx context.Context, l *SnapshotLoader, kind models.AccountKind, version models.LayoutVersion, owner *models.PublicKey, decode func([]byte, models.LayoutVersion) (*T, error)) ([]T, int, error) {
	size, err := models.LayoutSize(kind, version)
	if err != nil {
		return nil, 0, err
	}
	accounts, err := l.source.ScanAccountsBySize(ctx, size, owner)
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s %s: %w", kind, version, err)
	}

	out := make([]T, 0, len(accounts))
	malformed := 0
	for _, acc := range accounts {
		rec, err := decode(acc.Data, version)
		if errors.Is(err, models.ErrMalformedAccount) {
			malformed++
			l.metrics.IncMalformedSkipped(kind.String())
			l.logger.Warnf(providers.TypeLedger, "Skipping %s at %s (discriminator %s): %v",
				kind, acc.Address, discriminator(acc.Data), err)
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, malformed, nil
}

func discriminator(data []byte) string {
	if len(data) > models.HeaderSize {
		data = data[:models.HeaderSize]
	}
	return hex.EncodeToString(data)
}
