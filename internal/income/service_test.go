package income

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*Service, *MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)

	return NewService(repo, DefaultPolicy()), repo
}

func TestService_AddExtraction(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, repo := newTestService(t)

		caseID := uuid.New()
		params := ExtractionParams{
			CaseID:       caseID,
			DocumentID:   uuid.New(),
			DocumentType: DocW2,
			RawAmount:    48000,
			Frequency:    FreqAnnual,
			AmountType:   AmountGross,
			PayerName:    "Acme Corporation",
			Confidence:   1.7, // out of range, clamped on the way in
		}

		repo.EXPECT().CreateExtraction(gomock.Any(), gomock.Any()).Return(nil)

		x, err := svc.AddExtraction(context.Background(), params)

		require.NoError(t, err)
		assert.Equal(t, caseID, x.CaseID)
		assert.Equal(t, DocW2, x.DocumentType)
		assert.Equal(t, 1.0, x.Confidence)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().CreateExtraction(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		_, err := svc.AddExtraction(context.Background(), ExtractionParams{CaseID: uuid.New()})

		require.Error(t, err)
		assert.ErrorContains(t, err, "create extraction")
	})
}

func TestService_AddBatch(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		svc, _ := newTestService(t)

		out, err := svc.AddBatch(context.Background(), nil)

		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("AllStored", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().CreateExtraction(gomock.Any(), gomock.Any()).Return(nil).Times(3)

		out, err := svc.AddBatch(context.Background(), []ExtractionParams{
			{CaseID: uuid.New()}, {CaseID: uuid.New()}, {CaseID: uuid.New()},
		})

		require.NoError(t, err)
		assert.Len(t, out, 3)
	})

	t.Run("StopsOnFirstError", func(t *testing.T) {
		svc, repo := newTestService(t)

		gomock.InOrder(
			repo.EXPECT().CreateExtraction(gomock.Any(), gomock.Any()).Return(nil),
			repo.EXPECT().CreateExtraction(gomock.Any(), gomock.Any()).Return(errors.New("boom")),
		)

		out, err := svc.AddBatch(context.Background(), []ExtractionParams{
			{CaseID: uuid.New()}, {CaseID: uuid.New()}, {CaseID: uuid.New()},
		})

		require.Error(t, err)
		assert.Nil(t, out)
	})
}

func TestService_Reconcile(t *testing.T) {
	caseID := uuid.New()
	taxYear := 2023

	extractions := []RawExtraction{
		{
			ID:           uuid.New(),
			CaseID:       caseID,
			DocumentID:   uuid.New(),
			DocumentType: DocW2,
			RawAmount:    48000,
			Frequency:    FreqAnnual,
			AmountType:   AmountGross,
			PayerName:    "Acme Corporation",
			TaxYear:      &taxYear,
			Confidence:   0.9,
		},
		{
			ID:           uuid.New(),
			CaseID:       caseID,
			DocumentID:   uuid.New(),
			DocumentType: DocPayStub,
			RawAmount:    1840,
			Frequency:    FreqBiweekly,
			AmountType:   AmountGross,
			PayerName:    "ACME CORP",
			TaxYear:      &taxYear,
			Confidence:   0.9,
		},
	}

	t.Run("Success", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().ListExtractions(gomock.Any(), caseID).Return(extractions, nil)
		repo.EXPECT().
			ReplaceSources(gomock.Any(), caseID, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, sources []*ReconciledSource, summary CaseSummary) error {
				require.Len(t, sources, 1)
				assert.Equal(t, summary.TotalAnnualGross, sources[0].AnnualGross)

				return nil
			})

		result, err := svc.Reconcile(context.Background(), caseID)

		require.NoError(t, err)
		require.Len(t, result.Sources, 1)
		assert.Equal(t, StatusVerified, result.Sources[0].Status)
		assert.Equal(t, 48000.0, result.Sources[0].AnnualGross)
	})

	t.Run("ListError", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().ListExtractions(gomock.Any(), caseID).Return(nil, errors.New("boom"))

		_, err := svc.Reconcile(context.Background(), caseID)

		require.Error(t, err)
		assert.ErrorContains(t, err, "list extractions")
	})

	t.Run("ReplaceError", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().ListExtractions(gomock.Any(), caseID).Return(extractions, nil)
		repo.EXPECT().ReplaceSources(gomock.Any(), caseID, gomock.Any(), gomock.Any()).Return(errors.New("boom"))

		_, err := svc.Reconcile(context.Background(), caseID)

		require.Error(t, err)
		assert.ErrorContains(t, err, "replace sources")
	})
}

func TestService_Override(t *testing.T) {
	caseID := uuid.New()
	sourceID := uuid.New()

	stored := func() *ReconciledSource {
		src := &ReconciledSource{
			ID:           sourceID,
			CaseID:       caseID,
			EmployerName: "Acme Corporation",
			IncomeYear:   2023,
			Status:       StatusConflict,
			Confidence:   0.4,
			Discrepancy:  &Discrepancy{MaxVariance: 0.3},
		}
		src.setGross(39000)

		return src
	}

	t.Run("Success", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().GetSource(gomock.Any(), sourceID).Return(stored(), nil)
		repo.EXPECT().
			UpdateSource(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, src *ReconciledSource) error {
				assert.Equal(t, 52000.0, src.AnnualGross)
				assert.Equal(t, StatusManual, src.Status)
				assert.Equal(t, DeterminationManual, src.Determination)
				assert.Equal(t, 1.0, src.Confidence)
				assert.Nil(t, src.Discrepancy)
				assert.NotNil(t, src.UpdatedAt)
				assert.Contains(t, src.Notes, "manual override: confirmed with employer")

				return nil
			})
		repo.EXPECT().ListSources(gomock.Any(), caseID).Return([]*ReconciledSource{stored()}, nil)
		repo.EXPECT().SaveSummary(gomock.Any(), gomock.Any()).Return(nil)

		src, err := svc.Override(context.Background(), sourceID, 52000, "confirmed with employer")

		require.NoError(t, err)
		assert.Equal(t, 52000.0, src.AnnualGross)
		assert.InDelta(t, 52000.0/12, src.MonthlyGross, 1e-9)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().GetSource(gomock.Any(), sourceID).Return(nil, ErrNotFound)

		_, err := svc.Override(context.Background(), sourceID, 52000, "")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SummaryRecomputedFromAllSources", func(t *testing.T) {
		svc, repo := newTestService(t)

		repo.EXPECT().GetSource(gomock.Any(), sourceID).Return(stored(), nil)
		repo.EXPECT().UpdateSource(gomock.Any(), gomock.Any()).Return(nil)

		overridden := stored()
		overridden.setGross(52000)
		overridden.Status = StatusManual

		repo.EXPECT().ListSources(gomock.Any(), caseID).Return([]*ReconciledSource{overridden}, nil)
		repo.EXPECT().
			SaveSummary(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, summary CaseSummary) error {
				assert.Equal(t, caseID, summary.CaseID)
				assert.Equal(t, 52000.0, summary.TotalAnnualGross)
				assert.True(t, summary.AllSourcesReconciled)

				return nil
			})

		_, err := svc.Override(context.Background(), sourceID, 52000, "")

		require.NoError(t, err)
	})
}
