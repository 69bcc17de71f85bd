package tagging

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubRepository struct {
	candidateAssets   func(ctx context.Context, publisherID uuid.UUID) ([]Candidate, error)
	candidatesByIDs   func(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]Candidate, error)
	confirmedExamples func(ctx context.Context, publisherID uuid.UUID, category enums.ProductCategory, limit int, shared bool) ([]Example, error)
	findProduct       func(ctx context.Context, publisherID, productID uuid.UUID) (*models.Product, error)
	unmappedProducts  func(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID, limit int) ([]models.Product, error)
	listLinks         func(ctx context.Context, productID uuid.UUID) ([]models.ProductAsset, error)
	insertLinks       func(ctx context.Context, links []models.ProductAsset) error
	saveProduct       func(ctx context.Context, product *models.Product) error
}

func (s *stubRepository) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepository) CandidateAssets(ctx context.Context, publisherID uuid.UUID) ([]Candidate, error) {
	return s.candidateAssets(ctx, publisherID)
}

func (s *stubRepository) CandidatesByIDs(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]Candidate, error) {
	return s.candidatesByIDs(ctx, publisherID, ids)
}

func (s *stubRepository) ConfirmedExamples(ctx context.Context, publisherID uuid.UUID, category enums.ProductCategory, limit int, shared bool) ([]Example, error) {
	if s.confirmedExamples != nil {
		return s.confirmedExamples(ctx, publisherID, category, limit, shared)
	}
	return nil, nil
}

func (s *stubRepository) FindProduct(ctx context.Context, publisherID, productID uuid.UUID) (*models.Product, error) {
	return s.findProduct(ctx, publisherID, productID)
}

func (s *stubRepository) UnmappedProducts(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID, limit int) ([]models.Product, error) {
	return s.unmappedProducts(ctx, publisherID, ids, limit)
}

func (s *stubRepository) ListLinks(ctx context.Context, productID uuid.UUID) ([]models.ProductAsset, error) {
	if s.listLinks != nil {
		return s.listLinks(ctx, productID)
	}
	return nil, nil
}

func (s *stubRepository) InsertLinks(ctx context.Context, links []models.ProductAsset) error {
	if s.insertLinks != nil {
		return s.insertLinks(ctx, links)
	}
	return nil
}

func (s *stubRepository) SaveProduct(ctx context.Context, product *models.Product) error {
	if s.saveProduct != nil {
		return s.saveProduct(ctx, product)
	}
	return nil
}

type stubCompleter struct {
	fn func(ctx context.Context, system, user string) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return s.fn(ctx, system, user)
}

type stubAuditor struct {
	recorded []audit.RecordInput
}

func (s *stubAuditor) Record(ctx context.Context, identity tenant.Identity, input audit.RecordInput) error {
	s.recorded = append(s.recorded, input)
	return nil
}

func (s *stubAuditor) List(ctx context.Context, publisherID uuid.UUID, filter audit.ListFilter, params pagination.Params) ([]models.AuditLog, string, error) {
	return nil, "", nil
}

func newTestService(t *testing.T, repo Repository, completer *stubCompleter) (Service, *stubAuditor) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	auditor := &stubAuditor{}
	cfg := config.AIConfig{Model: "test", BatchSize: 5, BatchDelay: 0}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
	svc, err := NewService(repo, completer, db.NewWithConn(conn), auditor, cfg, nil, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, auditor
}

func TestSuggestReturnsValidatedSuggestions(t *testing.T) {
	publisherID := uuid.New()
	productID := uuid.New()
	kael := uuid.New()
	emblem := uuid.New()

	repo := &stubRepository{
		findProduct: func(ctx context.Context, _, _ uuid.UUID) (*models.Product, error) {
			return &models.Product{ID: productID, PublisherID: publisherID, Name: "Kael Plush", Category: enums.ProductCategoryToy}, nil
		},
		candidateAssets: func(ctx context.Context, _ uuid.UUID) ([]Candidate, error) {
			return []Candidate{
				{ID: kael, Name: "Kael", GameIPName: "Star Drifters"},
				{ID: emblem, Name: "Guild Emblem", GameIPName: "Star Drifters"},
			}, nil
		},
	}
	completer := &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		return fmt.Sprintf(`[
			{"assetId":"%s","assetName":"Kael","confidence":88,"reason":"plush of Kael"},
			{"assetId":"%s","assetName":"Guild Emblem","confidence":55},
			{"assetId":"%s","assetName":"Made Up","confidence":99}
		]`, kael, emblem, uuid.New()), nil
	}}
	svc, _ := newTestService(t, repo, completer)

	result, err := svc.Suggest(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), SuggestInput{ProductID: productID})
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("expected hallucinated id dropped, got %+v", result.Suggestions)
	}
	if result.Suggestions[0].AssetID != kael || result.Suggestions[0].Confidence != 88 {
		t.Fatalf("expected strongest suggestion first, got %+v", result.Suggestions[0])
	}
}

func TestSuggestPromptCarriesCandidateIDs(t *testing.T) {
	publisherID := uuid.New()
	kael := uuid.New()

	var prompt string
	repo := &stubRepository{
		findProduct: func(ctx context.Context, _, _ uuid.UUID) (*models.Product, error) {
			return &models.Product{ID: uuid.New(), PublisherID: publisherID, Name: "Mug", Category: enums.ProductCategoryHomeGoods}, nil
		},
		candidateAssets: func(ctx context.Context, _ uuid.UUID) ([]Candidate, error) {
			return []Candidate{{ID: kael, Name: "Kael", GameIPName: "Star Drifters"}}, nil
		},
		confirmedExamples: func(ctx context.Context, _ uuid.UUID, category enums.ProductCategory, limit int, shared bool) ([]Example, error) {
			if limit != exampleLimitSingle {
				t.Fatalf("expected single example limit, got %d", limit)
			}
			return []Example{{ProductName: "Kael Figurine", Category: enums.ProductCategoryToy, AssetName: "Kael"}}, nil
		},
	}
	completer := &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		prompt = user
		return "[]", nil
	}}
	svc, _ := newTestService(t, repo, completer)

	_, err := svc.Suggest(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), SuggestInput{ProductID: uuid.New()})
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	for _, want := range []string{kael.String(), "Star Drifters", "Kael Figurine", "Mug"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSuggestMalformedReplyDegradesToEmpty(t *testing.T) {
	publisherID := uuid.New()
	repo := &stubRepository{
		findProduct: func(ctx context.Context, _, _ uuid.UUID) (*models.Product, error) {
			return &models.Product{ID: uuid.New(), PublisherID: publisherID, Name: "Mug"}, nil
		},
		candidateAssets: func(ctx context.Context, _ uuid.UUID) ([]Candidate, error) {
			return []Candidate{{ID: uuid.New(), Name: "Kael"}}, nil
		},
	}
	completer := &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		return "I could not find any JSON to give you, sorry!", nil
	}}
	svc, _ := newTestService(t, repo, completer)

	result, err := svc.Suggest(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), SuggestInput{ProductID: uuid.New()})
	if err != nil {
		t.Fatalf("malformed output must not error: %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("expected empty suggestions, got %+v", result.Suggestions)
	}
}

func TestSuggestProviderErrorIsDependency(t *testing.T) {
	publisherID := uuid.New()
	repo := &stubRepository{
		findProduct: func(ctx context.Context, _, _ uuid.UUID) (*models.Product, error) {
			return &models.Product{ID: uuid.New(), PublisherID: publisherID, Name: "Mug"}, nil
		},
		candidateAssets: func(ctx context.Context, _ uuid.UUID) ([]Candidate, error) {
			return []Candidate{{ID: uuid.New(), Name: "Kael"}}, nil
		},
	}
	completer := &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		return "", fmt.Errorf("upstream 500")
	}}
	svc, _ := newTestService(t, repo, completer)

	_, err := svc.Suggest(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), SuggestInput{ProductID: uuid.New()})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestSuggestUnknownProductIsNotFound(t *testing.T) {
	repo := &stubRepository{
		findProduct: func(ctx context.Context, _, _ uuid.UUID) (*models.Product, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := newTestService(t, repo, &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		t.Fatal("model must not be called for unknown products")
		return "", nil
	}})

	_, err := svc.Suggest(context.Background(), tenant.User(uuid.New(), uuid.New(), enums.MemberRoleAdmin), SuggestInput{ProductID: uuid.New()})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSuggestBatchReportsMissingProductsEmpty(t *testing.T) {
	publisherID := uuid.New()
	knownProduct := uuid.New()
	missingProduct := uuid.New()
	kael := uuid.New()

	repo := &stubRepository{
		findProduct: func(ctx context.Context, _, productID uuid.UUID) (*models.Product, error) {
			if productID == missingProduct {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.Product{ID: productID, PublisherID: publisherID, Name: "Mug"}, nil
		},
		candidateAssets: func(ctx context.Context, _ uuid.UUID) ([]Candidate, error) {
			return []Candidate{{ID: kael, Name: "Kael"}}, nil
		},
	}
	completer := &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		return fmt.Sprintf(`[{"productId":"%s","suggestions":[{"assetId":"%s","assetName":"Kael","confidence":75}]}]`, knownProduct, kael), nil
	}}
	svc, _ := newTestService(t, repo, completer)

	results, err := svc.SuggestBatch(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), []SuggestInput{
		{ProductID: missingProduct},
		{ProductID: knownProduct},
	})
	if err != nil {
		t.Fatalf("SuggestBatch error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	byProduct := map[uuid.UUID][]int{}
	for _, r := range results {
		for _, s := range r.Suggestions {
			byProduct[r.ProductID] = append(byProduct[r.ProductID], s.Confidence)
		}
	}
	if len(byProduct[missingProduct]) != 0 {
		t.Fatal("missing product must get empty suggestions")
	}
	if len(byProduct[knownProduct]) != 1 || byProduct[knownProduct][0] != 75 {
		t.Fatalf("unexpected suggestions %+v", byProduct[knownProduct])
	}
}

func TestAutoTagLinksAndMarksSuggested(t *testing.T) {
	publisherID := uuid.New()
	productID := uuid.New()
	kael := uuid.New()
	emblem := uuid.New()
	alreadyLinked := uuid.New()

	var inserted []models.ProductAsset
	var saved *models.Product
	repo := &stubRepository{
		unmappedProducts: func(ctx context.Context, _ uuid.UUID, ids []uuid.UUID, limit int) ([]models.Product, error) {
			return []models.Product{{ID: productID, PublisherID: publisherID, Name: "Kael Plush", MappingStatus: enums.MappingStatusUnmapped}}, nil
		},
		candidateAssets: func(ctx context.Context, _ uuid.UUID) ([]Candidate, error) {
			return []Candidate{
				{ID: kael, Name: "Kael"},
				{ID: emblem, Name: "Guild Emblem"},
				{ID: alreadyLinked, Name: "Banner"},
			}, nil
		},
		listLinks: func(ctx context.Context, _ uuid.UUID) ([]models.ProductAsset, error) {
			return []models.ProductAsset{{ProductID: productID, IPAssetID: alreadyLinked, IsPrimary: true}}, nil
		},
		insertLinks: func(ctx context.Context, links []models.ProductAsset) error {
			inserted = links
			return nil
		},
		saveProduct: func(ctx context.Context, p *models.Product) error {
			saved = p
			return nil
		},
	}
	completer := &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		return fmt.Sprintf(`[{"productId":"%s","suggestions":[
			{"assetId":"%s","assetName":"Kael","confidence":91},
			{"assetId":"%s","assetName":"Banner","confidence":88},
			{"assetId":"%s","assetName":"Guild Emblem","confidence":45}
		]}]`, productID, kael, alreadyLinked, emblem), nil
	}}
	svc, auditor := newTestService(t, repo, completer)

	result, err := svc.AutoTag(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), AutoTagInput{})
	if err != nil {
		t.Fatalf("AutoTag error: %v", err)
	}
	if result.Total != 1 || result.Tagged != 1 {
		t.Fatalf("expected 1/1, got tagged=%d total=%d", result.Tagged, result.Total)
	}

	// 45 fails the batch floor; Banner is already linked
	if len(inserted) != 1 || inserted[0].IPAssetID != kael {
		t.Fatalf("expected only Kael linked, got %+v", inserted)
	}
	if inserted[0].IsPrimary {
		t.Fatal("product already had a primary link")
	}
	if saved == nil || saved.MappingStatus != enums.MappingStatusSuggested {
		t.Fatal("product must move to suggested, not confirmed")
	}
	if len(saved.AISuggestedAssets) != 2 {
		t.Fatalf("expected surviving suggestions cached, got %+v", saved.AISuggestedAssets)
	}
	if len(auditor.recorded) != 1 || auditor.recorded[0].Action != enums.AuditActionAutoTag {
		t.Fatal("expected ai.auto_tag audit entry")
	}
}

func TestAutoTagFirstEverLinkIsPrimary(t *testing.T) {
	publisherID := uuid.New()
	productID := uuid.New()
	kael := uuid.New()

	var inserted []models.ProductAsset
	repo := &stubRepository{
		unmappedProducts: func(ctx context.Context, _ uuid.UUID, ids []uuid.UUID, limit int) ([]models.Product, error) {
			return []models.Product{{ID: productID, PublisherID: publisherID, Name: "Kael Plush", MappingStatus: enums.MappingStatusUnmapped}}, nil
		},
		candidateAssets: func(ctx context.Context, _ uuid.UUID) ([]Candidate, error) {
			return []Candidate{{ID: kael, Name: "Kael"}}, nil
		},
		insertLinks: func(ctx context.Context, links []models.ProductAsset) error {
			inserted = links
			return nil
		},
	}
	completer := &stubCompleter{fn: func(ctx context.Context, system, user string) (string, error) {
		return fmt.Sprintf(`[{"productId":"%s","suggestions":[{"assetId":"%s","assetName":"Kael","confidence":80}]}]`, productID, kael), nil
	}}
	svc, _ := newTestService(t, repo, completer)

	if _, err := svc.AutoTag(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), AutoTagInput{}); err != nil {
		t.Fatalf("AutoTag error: %v", err)
	}
	if len(inserted) != 1 || !inserted[0].IsPrimary {
		t.Fatalf("first-ever link must be primary, got %+v", inserted)
	}
}
