package pricerd

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/GoSim-25-26J-441/pricing-core/internal/engine"
	"github.com/GoSim-25-26J-441/pricing-core/internal/parallel"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/config"
)

// scenarioRequest is the body of run creation and synchronous pricing on
// both transports. Exactly one of Scenario and ScenarioYAML is expected;
// Scenario wins when both are set.
type scenarioRequest struct {
	RunID        string           `json:"run_id,omitempty"`
	Scenario     *config.Scenario `json:"scenario,omitempty"`
	ScenarioYAML string           `json:"scenario_yaml,omitempty"`

	CallbackURL    string `json:"callback_url,omitempty"`
	CallbackSecret string `json:"callback_secret,omitempty"`
}

func (r scenarioRequest) resolve() (*config.Scenario, error) {
	switch {
	case r.Scenario != nil:
		if err := config.ValidateScenario(r.Scenario); err != nil {
			return nil, err
		}
		return r.Scenario, nil
	case r.ScenarioYAML != "":
		return config.ParseScenarioYAMLString(r.ScenarioYAML)
	default:
		return nil, fmt.Errorf("%w: scenario or scenario_yaml is required", config.ErrInvalidScenario)
	}
}

// createAndStart stores a run for req and starts it.
func createAndStart(store *RunStore, executor *RunExecutor, req scenarioRequest) (*RunRecord, error) {
	scenario, err := req.resolve()
	if err != nil {
		return nil, err
	}
	rec, err := store.Create(req.RunID, scenario)
	if err != nil {
		return nil, err
	}
	if req.CallbackURL != "" {
		if err := store.SetCallback(rec.Run.ID, req.CallbackURL, req.CallbackSecret); err != nil {
			return nil, err
		}
	}
	return executor.Start(rec.Run.ID)
}

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrRunIDMissing),
		errors.Is(err, config.ErrInvalidScenario),
		errors.Is(err, engine.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunExists), errors.Is(err, ErrRunTerminal):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNumericalOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, parallel.ErrResourceExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func grpcCodeFor(err error) codes.Code {
	switch {
	case errors.Is(err, ErrRunIDMissing),
		errors.Is(err, config.ErrInvalidScenario),
		errors.Is(err, engine.ErrInvalidParams):
		return codes.InvalidArgument
	case errors.Is(err, ErrRunNotFound):
		return codes.NotFound
	case errors.Is(err, ErrRunExists):
		return codes.AlreadyExists
	case errors.Is(err, ErrRunTerminal):
		return codes.FailedPrecondition
	case errors.Is(err, engine.ErrNumericalOverflow):
		return codes.OutOfRange
	case errors.Is(err, parallel.ErrResourceExhausted):
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}
