package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/injector"
	"github.com/user/bookmeta/internal/repository"
)

// ErrNothingToInject is returned when the store holds no record.
var ErrNothingToInject = errors.New("no stored record to inject")

// Injection hands the stored record to a target form.
type Injection interface {
	Plan(ctx context.Context) ([]entity.FormAssignment, error)
	Inject(ctx context.Context, targetURL string) (int, error)
}

type injectionUseCase struct {
	store   *Store
	filler  repository.FormFiller
	mapping injector.Mapping
	logger  *zap.Logger
}

// NewInjectionUseCase creates a new instance of the injection use case.
// filler may be nil when only plans are needed.
func NewInjectionUseCase(store *Store, filler repository.FormFiller, mapping injector.Mapping, logger *zap.Logger) Injection {
	if mapping == nil {
		mapping = injector.DefaultMapping
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &injectionUseCase{store: store, filler: filler, mapping: mapping, logger: logger}
}

func (uc *injectionUseCase) Plan(ctx context.Context) ([]entity.FormAssignment, error) {
	stored := uc.store.Load(ctx)
	if stored.SavedAt.IsZero() {
		return nil, ErrNothingToInject
	}
	return injector.Plan(stored.Record, uc.mapping), nil
}

func (uc *injectionUseCase) Inject(ctx context.Context, targetURL string) (int, error) {
	if uc.filler == nil {
		return 0, errors.New("no form filler configured")
	}
	plan, err := uc.Plan(ctx)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("injecting record", zap.String("target", targetURL), zap.Int("fields", len(plan)))
	return uc.filler.Fill(ctx, targetURL, plan)
}
