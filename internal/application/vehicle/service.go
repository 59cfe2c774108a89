package vehicle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stocktochain-backend/internal/application/ledger"
	"stocktochain-backend/internal/application/oracle"
	"stocktochain-backend/internal/config"
	"stocktochain-backend/internal/domain"
	"stocktochain-backend/internal/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Publisher forwards committed notifications to subscribers outside the process.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Service is the investment vehicle engine. Each entry point runs in one database
// transaction holding the state row lock, so a failure leaves no trace and
// instances sharing a database never interleave.
type Service struct {
	DB        *gorm.DB
	Config    *config.Config
	Oracle    *oracle.Adapter
	Ledger    ledger.Ledger
	Publisher Publisher
	Now       func() time.Time

	mu sync.Mutex
}

// NewService wires the engine. publisher may be nil.
func NewService(db *gorm.DB, cfg *config.Config, adapter *oracle.Adapter, publisher Publisher) *Service {
	return &Service{DB: db, Config: cfg, Oracle: adapter, Publisher: publisher, Now: time.Now}
}

// Init creates the vehicle state row on first start. An existing row is left as is,
// so a transferred ownership survives restarts.
func (s *Service) Init(ctx context.Context) error {
	st := domain.VehicleState{
		ID:             domain.VehicleStateID,
		Owner:          s.Config.Owner.Hex(),
		PlatformWallet: s.Config.PlatformWallet.Hex(),
		Status:         domain.StatusNotStarted,
	}
	return s.DB.WithContext(ctx).
		Where(domain.VehicleState{ID: domain.VehicleStateID}).
		FirstOrCreate(&st).Error
}

// call is the scope of one entry point: its transaction, the state row and the
// notifications recorded so far.
type call struct {
	tx     *gorm.DB
	state  *domain.VehicleState
	now    time.Time
	actor  common.Address
	events []domain.Notification
}

func (s *Service) run(ctx context.Context, op string, actor common.Address, fn func(c *call) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &call{now: s.now(), actor: actor}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := loadState(lockState(tx))
		if err != nil {
			return err
		}
		c.tx, c.state = tx, st
		if err := fn(c); err != nil {
			return err
		}
		return tx.Save(st).Error
	})
	if err != nil {
		if e := apperror.As(err); e != nil && e.Kind != apperror.KindInternal {
			log.Warn().Str("code", e.Code).Str("op", op).Str("actor", actor.Hex()).Msg("vehicle operation rejected")
		} else {
			log.Error().Err(err).Str("op", op).Str("actor", actor.Hex()).Msg("vehicle operation failed")
		}
		return err
	}

	log.Info().Str("op", op).Str("actor", actor.Hex()).Int("notifications", len(c.events)).Msg("vehicle operation committed")
	s.publish(ctx, c.events)
	return nil
}

func (s *Service) publish(ctx context.Context, events []domain.Notification) {
	if s.Publisher == nil {
		return
	}
	for _, n := range events {
		if err := s.Publisher.Publish(ctx, n); err != nil {
			log.Error().Err(err).Uint64("seq", n.Seq).Str("name", n.Name).Msg("publish notification failed")
		}
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func loadState(tx *gorm.DB) (*domain.VehicleState, error) {
	var st domain.VehicleState
	if err := tx.First(&st, domain.VehicleStateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateNotInitialized
		}
		return nil, fmt.Errorf("load vehicle state: %w", err)
	}
	return &st, nil
}

// lockState takes the vehicle state row FOR UPDATE, so every entry point is
// serialized across processes sharing one database. SQLite ignores the clause.
func lockState(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (c *call) requireOwner() error {
	if c.actor != common.HexToAddress(c.state.Owner) {
		return ErrNotOwner
	}
	return nil
}

func (c *call) requireNotPaused() error {
	if c.state.Paused {
		return ErrPaused
	}
	return nil
}

// loadInvestor returns the record for addr, or a fresh unsaved one.
func loadInvestor(tx *gorm.DB, addr common.Address) (*domain.Investor, bool, error) {
	inv := domain.Investor{Address: addr.Hex()}
	err := tx.Where("address = ?", addr.Hex()).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &inv, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load investor %s: %w", addr.Hex(), err)
	}
	return &inv, true, nil
}

// registrySlice returns the investors at registry positions [start, end) in order.
func registrySlice(tx *gorm.DB, start, end uint64) ([]domain.Investor, error) {
	var out []domain.Investor
	err := tx.Where("registry_index >= ? AND registry_index < ?", start, end).
		Order("registry_index ASC").
		Find(&out).Error
	return out, err
}

// mulDiv returns a*b/d rounded down.
func mulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	out, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return out, nil
}

func addAmount(a domain.Amount, b *uint256.Int) (domain.Amount, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a.U256(), b)
	if overflow {
		return domain.Amount{}, ErrAmountOverflow
	}
	return domain.NewAmount(sum), nil
}

func (s *Service) vehicle() common.Address {
	return s.Config.VehicleAddress
}
