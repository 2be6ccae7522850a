package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/collaborators"
	"github.com/homeplan-finance-core/internal/config"
	"github.com/homeplan-finance-core/internal/domain/affordability"
	"github.com/homeplan-finance-core/internal/domain/finance"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/plan"
)

// PlanCache is the subset of the cache client the plan service needs.
type PlanCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// PlanServiceImpl implements the PlanService interface. Quotes and plan
// sets are pure computations over collaborator data, so identical requests
// are served from cache.
type PlanServiceImpl struct {
	identity  collaborators.IdentityProvider
	income    collaborators.IncomeEstimator
	debt      collaborators.DebtAggregator
	catalog   collaborators.ProductCatalog
	generator *plan.Generator
	cache     PlanCache
	lending   *config.LendingConfig
	logger    *slog.Logger
}

// NewPlanService creates a new plan service. A nil cache disables caching.
func NewPlanService(
	logger *slog.Logger,
	lending *config.LendingConfig,
	identity collaborators.IdentityProvider,
	income collaborators.IncomeEstimator,
	debt collaborators.DebtAggregator,
	catalog collaborators.ProductCatalog,
	generator *plan.Generator,
	cache PlanCache,
) PlanService {
	return &PlanServiceImpl{
		identity:  identity,
		income:    income,
		debt:      debt,
		catalog:   catalog,
		generator: generator,
		cache:     cache,
		lending:   lending,
		logger:    logger,
	}
}

// borrowerProfile is the resolved collaborator data for one request. The
// repayment method is already normalized from the catalog's tag.
type borrowerProfile struct {
	income  money.Money
	debt    money.Money
	product *collaborators.ProductDescriptor
	method  finance.RepaymentMethod
}

// resolve authenticates the credential and gathers income, existing debt
// service and the product descriptor.
func (s *PlanServiceImpl) resolve(ctx context.Context, request *QuoteRequest) (*borrowerProfile, error) {
	userID, err := s.identity.Authenticate(ctx, request.Credential)
	if err != nil {
		return nil, err
	}

	income, known, err := s.income.AnnualIncome(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate income: %w", err)
	}
	if !known {
		s.logger.Info("No income data for user, quoting against zero income", "user_id", userID)
	}

	debt, err := s.debt.ExistingAnnualDebtService(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate existing debt: %w", err)
	}

	product, err := s.catalog.FindProduct(ctx, request.ProductID)
	if err != nil {
		return nil, err
	}

	method, normalized := finance.ParseRepaymentMethod(product.MethodTag)
	if normalized {
		s.logger.Warn("Unknown repayment method tag, defaulting to equal principal",
			"product_id", product.ID,
			"method_tag", product.MethodTag,
		)
	}

	return &borrowerProfile{income: income, debt: debt, product: product, method: method}, nil
}

// externalCeiling converts the configured hard principal limit to Money.
// A zero config value disables the clamp.
func (s *PlanServiceImpl) externalCeiling(currency money.Currency) money.Money {
	if s.lending.ExternalMaxAmount <= 0 {
		return money.Money{}
	}
	return money.NewFromInt(s.lending.ExternalMaxAmount, currency)
}

// QuoteAffordability computes the maximum principal for the authenticated
// user against the product's rate, term and repayment method.
func (s *PlanServiceImpl) QuoteAffordability(ctx context.Context, request *QuoteRequest) (*affordability.Result, error) {
	profile, err := s.resolve(ctx, request)
	if err != nil {
		return nil, err
	}

	ceiling := decimal.NewFromFloat(s.lending.RatioCeilingPct)
	currency := profile.income.Currency()

	var ltvCap money.Money
	if request.TargetPrice.IsPositive() {
		limit := finance.LTVLimit(finance.Region(request.Region), finance.HousingStatus(request.HousingStatus))
		ltvCap = request.TargetPrice.Mul(limit.Div(decimal.NewFromInt(100)))
	}

	result, err := affordability.MaxPrincipal(affordability.Context{
		AnnualIncome:              profile.income,
		ExistingAnnualDebtService: profile.debt,
		AnnualRatePct:             profile.product.AnnualRatePct,
		TermMonths:                profile.product.TermMonths,
		Method:                    profile.method,
		TargetRatioPct:            ceiling,
		AbsoluteCeilingPct:        ceiling,
		LTVCappedAmount:           ltvCap,
		ExternalMaxAmount:         s.externalCeiling(currency),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Affordability quote computed",
		"product_id", request.ProductID,
		"max_principal", result.MaxPrincipal.String(),
		"rejected", result.Rejected,
	)

	return &result, nil
}

// GeneratePlans prices the strategy set for the authenticated user. The
// result is cached under a hash of the resolved inputs, so two users with
// identical profiles and requests share an entry.
func (s *PlanServiceImpl) GeneratePlans(ctx context.Context, request *QuoteRequest) (*plan.Result, error) {
	profile, err := s.resolve(ctx, request)
	if err != nil {
		return nil, err
	}

	input := plan.Input{
		AnnualIncome:              profile.income,
		ExistingAnnualDebtService: profile.debt,
		AnnualRatePct:             profile.product.AnnualRatePct,
		TermMonths:                profile.product.TermMonths,
		Method:                    profile.method,
		RatioCeilingPct:           decimal.NewFromFloat(s.lending.RatioCeilingPct),
		Region:                    finance.Region(request.Region),
		HousingStatus:             finance.HousingStatus(request.HousingStatus),
		TargetPrice:               request.TargetPrice,
		CurrentCash:               request.CurrentCash,
		ExternalMaxAmount:         s.externalCeiling(profile.income.Currency()),
		DesiredMonthlySaving:      request.DesiredMonthlySaving,
		SavingTermMonths:          request.SavingTermMonths,
	}
	if input.SavingTermMonths <= 0 {
		input.SavingTermMonths = s.lending.DefaultSavingMonths
	}

	key, err := planCacheKey(input)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var result plan.Result
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				s.logger.Info("Plan set served from cache", "key", key)
				return &result, nil
			}
			s.logger.Warn("Failed to decode cached plan set, recomputing", "key", key)
		}
	}

	result, err := s.generator.Generate(input)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		encoded, err := json.Marshal(result)
		if err == nil {
			if err := s.cache.Set(ctx, key, string(encoded)); err != nil {
				s.logger.Warn("Failed to cache plan set", "key", key, "error", err)
			}
		}
	}

	return &result, nil
}

// planCacheKey hashes the fully resolved generator input. Hashing after
// collaborator resolution keeps credential strings out of the cache.
func planCacheKey(input plan.Input) (string, error) {
	encoded, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode plan input: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return "plans:" + hex.EncodeToString(sum[:]), nil
}
