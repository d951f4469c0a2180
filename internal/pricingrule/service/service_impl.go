package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	pricestackdomain "github.com/railzwaylabs/pricestack/internal/pricestack/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	GenID *snowflake.Node
	Clock clock.Clock `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricingrule.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.PricingRule, error) {
	rule := domain.PricingRule{
		Name:        strings.TrimSpace(req.Name),
		TargetType:  domain.TargetType(strings.ToUpper(strings.TrimSpace(string(req.TargetType)))),
		TargetValue: strings.TrimSpace(req.TargetValue),
		Action:      domain.Action(strings.ToUpper(strings.TrimSpace(string(req.Action)))),
		Value:       req.Value,
		Priority:    req.Priority,
		IsActive:    true,
		Schedule:    req.Schedule,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if rule.Schedule.Recurrence == "" {
		rule.Schedule.Recurrence = domain.RecurrenceNone
	}
	if err := validateRule(rule); err != nil {
		return domain.PricingRule{}, err
	}

	now := s.clock.Now(ctx)
	rule.ID = s.genID.Generate()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &rule); err != nil {
		s.log.Error("failed to insert pricing rule", zap.Error(err))
		return domain.PricingRule{}, err
	}
	return rule, nil
}

func validateRule(rule domain.PricingRule) error {
	if rule.Name == "" {
		return domain.ErrInvalidRule
	}
	switch rule.TargetType {
	case domain.TargetGlobal:
	case domain.TargetBrand, domain.TargetCategory:
		if rule.TargetValue == "" {
			return domain.ErrInvalidTargetType
		}
	default:
		return domain.ErrInvalidTargetType
	}
	switch rule.Action {
	case domain.ActionSetMargin:
		if rule.Value >= 100 {
			return domain.ErrInvalidRule
		}
	case domain.ActionMultiplier:
		if rule.Value <= 0 {
			return domain.ErrInvalidRule
		}
	default:
		return domain.ErrInvalidAction
	}
	sched := rule.Schedule
	switch sched.Recurrence {
	case domain.RecurrenceNone:
		if sched.StartDate != nil && sched.EndDate != nil && sched.EndDate.Before(*sched.StartDate) {
			return domain.ErrInvalidSchedule
		}
	case domain.RecurrenceAnnual:
		if sched.StartDate == nil || sched.EndDate == nil {
			return domain.ErrInvalidSchedule
		}
	default:
		return domain.ErrInvalidSchedule
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.PricingRule, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) SetActive(ctx context.Context, id snowflake.ID, active bool) (domain.PricingRule, error) {
	rule, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.PricingRule{}, err
	}
	if rule == nil {
		return domain.PricingRule{}, domain.ErrRuleNotFound
	}
	if err := s.repo.SetActive(ctx, s.db, id, active); err != nil {
		s.log.Error("failed to update pricing rule", zap.String("rule_id", id.String()), zap.Error(err))
		return domain.PricingRule{}, err
	}
	rule.IsActive = active
	return *rule, nil
}

func (s *Service) FindApplicable(ctx context.Context, target domain.ProductTarget) (*domain.PricingRule, error) {
	rules, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		s.log.Error("failed to list pricing rules", zap.Error(err))
		return nil, err
	}
	return SelectRule(rules, target, s.clock.Now(ctx)), nil
}

func (s *Service) SeedMargin(ctx context.Context, target domain.ProductTarget, baseMargin float64) (domain.Applied, error) {
	rule, err := s.FindApplicable(ctx, target)
	if err != nil {
		return domain.Applied{}, err
	}
	return domain.Applied{
		Rule:         rule,
		BaseMargin:   baseMargin,
		TargetMargin: TargetMargin(rule, baseMargin),
	}, nil
}

func (s *Service) SeedStack(ctx context.Context, target domain.ProductTarget, stack pricestackdomain.Stack) (pricestackdomain.Stack, *domain.PricingRule, error) {
	rule, err := s.FindApplicable(ctx, target)
	if err != nil {
		return pricestackdomain.Stack{}, nil, err
	}
	return ApplyToStack(rule, stack), rule, nil
}
