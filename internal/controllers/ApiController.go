package controllers

import (
	"minelens/internal/providers"
	"minelens/internal/services"
	"minelens/internal/structures"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const (
	cacheKeyNetwork       = "hp:network"
	cacheKeyWeightedStake = "stake:weighted"
)

type ApiController struct {
	logger  providers.Logger
	network services.NetworkServiceInterface
	history services.HistoryServiceInterface
	stake   services.StakeServiceInterface
	cache   providers.CacheProviderInterface
	conf    *structures.Config
}

func NewApiController(
	logger providers.Logger,
	network services.NetworkServiceInterface,
	history services.HistoryServiceInterface,
	stake services.StakeServiceInterface,
	cache providers.CacheProviderInterface,
	conf *structures.Config,
) *ApiController {
	return &ApiController{
		logger:  logger,
		network: network,
		history: history,
		stake:   stake,
		cache:   cache,
		conf:    conf,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// intParam reads an integer query parameter, falling back to def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, newBadRequest("invalid " + name + ": " + raw)
	}
	return v, nil
}

func (ac *ApiController) GetNetwork(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, r, cacheKeyNetwork, func() (any, error) {
		return ac.network.ComputeNetworkAggregate(r.Context())
	})
}

func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	hours, err := intParam(r, "hours", ac.conf.History.DefaultRangeHours)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	step, err := intParam(r, "stepHours", ac.conf.History.DefaultStepHours)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	hours, step = services.ClampHistoryParams(hours, step)
	key := "hp:history:" + strconv.Itoa(hours) + ":" + strconv.Itoa(step)
	ac.serveFromCacheOrCompute(w, r, key, func() (any, error) {
		return ac.history.ComputeHistory(r.Context(), hours, step)
	})
}

func (ac *ApiController) GetWallet(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	ac.serveFromCacheOrCompute(w, r, "hp:wallet:"+owner.String(), func() (any, error) {
		return ac.network.WalletHashpower(r.Context(), owner)
	})
}

func (ac *ApiController) GetRewardEstimate(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	ac.serveFromCacheOrCompute(w, r, "reward:"+owner.String(), func() (any, error) {
		return ac.network.EstimateReward(r.Context(), owner)
	})
}

func (ac *ApiController) GetWeightedStake(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, r, cacheKeyWeightedStake, func() (any, error) {
		return ac.stake.ComputeWeightedStakeTotal(r.Context())
	})
}
