// Package tagging produces AI mapping suggestions and applies auto-tagging.
package tagging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/llm"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/metrics"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
	"gorm.io/gorm"
)

const (
	exampleLimitSingle = 15
	exampleLimitBatch  = 20

	defaultAutoTagLimit = 50
	maxAutoTagLimit     = 200
)

// Service is the AI tagging surface.
type Service interface {
	Suggest(ctx context.Context, identity tenant.Identity, input SuggestInput) (*SuggestResult, error)
	SuggestBatch(ctx context.Context, identity tenant.Identity, items []SuggestInput) ([]SuggestResult, error)
	AutoTag(ctx context.Context, identity tenant.Identity, input AutoTagInput) (*AutoTagResult, error)
}

type service struct {
	repo      Repository
	completer llm.Completer
	dbClient  *db.Client
	auditor   audit.Service
	cfg       config.AIConfig
	metrics   *metrics.TaggingMetrics
	logger    *logger.Logger
}

// NewService constructs the tagging service.
func NewService(
	repo Repository,
	completer llm.Completer,
	dbClient *db.Client,
	auditor audit.Service,
	cfg config.AIConfig,
	taggingMetrics *metrics.TaggingMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tagging repository required")
	}
	if completer == nil {
		return nil, fmt.Errorf("completer required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if taggingMetrics == nil {
		taggingMetrics = metrics.NewTaggingMetrics(nil)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return &service{
		repo:      repo,
		completer: completer,
		dbClient:  dbClient,
		auditor:   auditor,
		cfg:       cfg,
		metrics:   taggingMetrics,
		logger:    logg,
	}, nil
}

// Suggest runs one completion for one product and returns the validated
// suggestions. Malformed model output degrades to an empty list; provider
// failures surface as dependency errors without retry.
func (s *service) Suggest(ctx context.Context, identity tenant.Identity, input SuggestInput) (*SuggestResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindProduct(ctx, identity.PublisherID, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	candidates, err := s.loadCandidates(ctx, identity.PublisherID, input.AssetIDs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &SuggestResult{ProductID: product.ID, Suggestions: []types.TagSuggestion{}}, nil
	}

	examples, err := s.repo.ConfirmedExamples(ctx, identity.PublisherID, product.Category, exampleLimitSingle, s.cfg.SharedExamples)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mine examples")
	}

	start := time.Now()
	body, err := s.completer.Complete(ctx, systemPrompt, buildSinglePrompt(product, candidates, examples))
	s.metrics.ObserveDuration("single", time.Since(start))
	if err != nil {
		s.metrics.IncFailure("single")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ai provider")
	}
	s.metrics.IncSuccess("single")

	raw, ok := decodeSuggestions(body)
	if !ok {
		s.logger.Warn(s.logger.WithField(ctx, "product_id", product.ID.String()), "undecodable model reply, returning no suggestions")
	}
	suggestions, discarded := validateSuggestions(raw, candidateSet(candidates), floorSingle)
	s.metrics.AddDiscarded(discarded)

	return &SuggestResult{ProductID: product.ID, Suggestions: suggestions}, nil
}

// SuggestBatch runs one completion per group of BatchSize products, pausing
// BatchDelay between groups. Each item is gated against its own candidate
// set. Products the caller does not own come back with empty suggestions.
func (s *service) SuggestBatch(ctx context.Context, identity tenant.Identity, items []SuggestInput) ([]SuggestResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	results := make([]SuggestResult, 0, len(items))
	for start := 0; start < len(items); start += s.cfg.BatchSize {
		if start > 0 {
			if err := s.pause(ctx); err != nil {
				return nil, err
			}
		}
		end := start + s.cfg.BatchSize
		if end > len(items) {
			end = len(items)
		}
		batch, err := s.suggestGroup(ctx, identity, items[start:end], floorBatch)
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}
	return results, nil
}

func (s *service) suggestGroup(ctx context.Context, identity tenant.Identity, items []SuggestInput, floor int) ([]SuggestResult, error) {
	results := make([]SuggestResult, 0, len(items))
	products := make([]*models.Product, 0, len(items))
	gates := map[uuid.UUID]map[uuid.UUID]Candidate{}
	var prompt []Candidate
	promptSeen := map[uuid.UUID]bool{}

	var category enums.ProductCategory
	for _, item := range items {
		product, err := s.repo.FindProduct(ctx, identity.PublisherID, item.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				results = append(results, SuggestResult{ProductID: item.ProductID, Suggestions: []types.TagSuggestion{}})
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		candidates, err := s.loadCandidates(ctx, identity.PublisherID, item.AssetIDs)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
		gates[product.ID] = candidateSet(candidates)
		category = product.Category
		for _, c := range candidates {
			if !promptSeen[c.ID] {
				promptSeen[c.ID] = true
				prompt = append(prompt, c)
			}
		}
	}
	if len(products) == 0 || len(prompt) == 0 {
		for _, product := range products {
			results = append(results, SuggestResult{ProductID: product.ID, Suggestions: []types.TagSuggestion{}})
		}
		return results, nil
	}

	examples, err := s.repo.ConfirmedExamples(ctx, identity.PublisherID, category, exampleLimitBatch, s.cfg.SharedExamples)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mine examples")
	}

	start := time.Now()
	body, err := s.completer.Complete(ctx, systemPrompt, buildBatchPrompt(products, prompt, examples))
	s.metrics.ObserveDuration("batch", time.Since(start))
	if err != nil {
		s.metrics.IncFailure("batch")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ai provider")
	}
	s.metrics.IncSuccess("batch")

	byProduct := map[uuid.UUID][]rawSuggestion{}
	if entries, ok := decodeBatch(body); ok {
		for _, entry := range entries {
			productID, err := uuid.Parse(entry.ProductID)
			if err != nil {
				continue
			}
			byProduct[productID] = entry.Suggestions
		}
	} else {
		s.logger.Warn(ctx, "undecodable batch model reply, returning no suggestions")
	}

	for _, product := range products {
		suggestions, discarded := validateSuggestions(byProduct[product.ID], gates[product.ID], floor)
		s.metrics.AddDiscarded(discarded)
		results = append(results, SuggestResult{ProductID: product.ID, Suggestions: suggestions})
	}
	return results, nil
}

// AutoTag suggests over unmapped products and eagerly links every surviving
// suggestion. Auto-tag proposes rather than confirms: touched products move
// to suggested with the list cached for human review.
func (s *service) AutoTag(ctx context.Context, identity tenant.Identity, input AutoTagInput) (*AutoTagResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultAutoTagLimit
	}
	if limit > maxAutoTagLimit {
		limit = maxAutoTagLimit
	}

	targets, err := s.repo.UnmappedProducts(ctx, identity.PublisherID, dedupe(input.ProductIDs), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load unmapped products")
	}

	result := &AutoTagResult{Total: len(targets), Results: []AutoTagItem{}}
	if len(targets) == 0 {
		return result, nil
	}

	candidates, err := s.repo.CandidateAssets(ctx, identity.PublisherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load candidate assets")
	}
	if len(candidates) == 0 {
		return result, nil
	}
	gate := candidateSet(candidates)

	examples, err := s.repo.ConfirmedExamples(ctx, identity.PublisherID, targets[0].Category, exampleLimitBatch, s.cfg.SharedExamples)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mine examples")
	}

	for start := 0; start < len(targets); start += s.cfg.BatchSize {
		if start > 0 {
			if err := s.pause(ctx); err != nil {
				return nil, err
			}
		}
		end := start + s.cfg.BatchSize
		if end > len(targets) {
			end = len(targets)
		}
		group := make([]*models.Product, 0, end-start)
		for i := start; i < end; i++ {
			group = append(group, &targets[i])
		}

		began := time.Now()
		body, err := s.completer.Complete(ctx, systemPrompt, buildBatchPrompt(group, candidates, examples))
		s.metrics.ObserveDuration("auto_tag", time.Since(began))
		if err != nil {
			s.metrics.IncFailure("auto_tag")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ai provider")
		}
		s.metrics.IncSuccess("auto_tag")

		byProduct := map[uuid.UUID][]rawSuggestion{}
		if entries, ok := decodeBatch(body); ok {
			for _, entry := range entries {
				productID, err := uuid.Parse(entry.ProductID)
				if err != nil {
					continue
				}
				byProduct[productID] = entry.Suggestions
			}
		}

		for _, product := range group {
			suggestions, discarded := validateSuggestions(byProduct[product.ID], gate, floorBatch)
			s.metrics.AddDiscarded(discarded)

			item := AutoTagItem{ProductID: product.ID, Suggestions: suggestions}
			if len(suggestions) > 0 {
				linked, err := s.applySuggestions(ctx, product, suggestions)
				if err != nil {
					return nil, err
				}
				item.Linked = linked
				result.Tagged++
			}
			result.Results = append(result.Results, item)
		}
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionAutoTag,
		ResourceType: "product",
		Metadata:     types.JSONMap{"tagged": result.Tagged, "total": result.Total},
	})
	return result, nil
}

// applySuggestions links every surviving suggestion and caches the list on
// the product, inside one transaction per product.
func (s *service) applySuggestions(ctx context.Context, product *models.Product, suggestions []types.TagSuggestion) (int, error) {
	linked := 0
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListLinks(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list links")
		}
		present := map[uuid.UUID]bool{}
		for _, link := range existing {
			present[link.IPAssetID] = true
		}

		links := make([]models.ProductAsset, 0, len(suggestions))
		for _, suggestion := range suggestions {
			if present[suggestion.AssetID] {
				continue
			}
			links = append(links, models.ProductAsset{
				ProductID: product.ID,
				IPAssetID: suggestion.AssetID,
				IsPrimary: len(existing) == 0 && len(links) == 0,
			})
		}
		if err := repo.InsertLinks(ctx, links); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert links")
		}
		linked = len(links)

		product.MappingStatus = enums.MappingStatusSuggested
		product.AISuggestedAssets = types.SuggestionList(suggestions)
		if err := repo.SaveProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return linked, nil
}

func (s *service) loadCandidates(ctx context.Context, publisherID uuid.UUID, assetIDs []uuid.UUID) ([]Candidate, error) {
	ids := dedupe(assetIDs)
	var (
		candidates []Candidate
		err        error
	)
	if len(ids) > 0 {
		candidates, err = s.repo.CandidatesByIDs(ctx, publisherID, ids)
	} else {
		candidates, err = s.repo.CandidateAssets(ctx, publisherID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load candidate assets")
	}
	return candidates, nil
}

// pause waits BatchDelay between provider calls, bailing if the request is
// cancelled mid-run.
func (s *service) pause(ctx context.Context) error {
	if s.cfg.BatchDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "auto-tag cancelled")
	case <-time.After(s.cfg.BatchDelay):
		return nil
	}
}

func candidateSet(candidates []Candidate) map[uuid.UUID]Candidate {
	set := make(map[uuid.UUID]Candidate, len(candidates))
	for _, c := range candidates {
		set[c.ID] = c
	}
	return set
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
