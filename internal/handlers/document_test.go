package handlers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"example.com/peoplehub/services/automation/internal/engine"
)

func TestClassifyDocument(t *testing.T) {
	cases := []struct {
		filename string
		category string
	}{
		{"Payslip_March_2026.pdf", CategoryPayroll},
		{"salary-adjustment.docx", CategoryPayroll},
		{"Employment_Contract_Signed.pdf", CategoryContract},
		{"offer_letter.pdf", CategoryContract},
		{"first-aid-certificate.pdf", CategoryCertificate},
		{"Diploma_Scan.jpg", CategoryCertificate},
		{"passport_copy.png", CategoryIdentity},
		{"holiday_photos.zip", CategoryGeneral},
	}

	for _, tc := range cases {
		require.Equal(t, tc.category, ClassifyDocument(tc.filename), tc.filename)
	}
}

func TestDocumentHandlerTagsAndNotifiesPayroll(t *testing.T) {
	documentID := uuid.New()
	ownerID := uuid.New()

	handler := NewDocumentHandler()
	decision, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    engine.EntityDocuments,
		Operation: engine.OperationInserted,
		New: engine.Record{
			"id":       documentID.String(),
			"owner_id": ownerID.String(),
			"filename": "payslip_jan.pdf",
		},
	})
	require.NoError(t, err)
	require.Equal(t, CategoryPayroll, decision.Category)
	require.Len(t, decision.Actions, 2)

	tag, ok := decision.Actions[0].(engine.DocumentTag)
	require.True(t, ok)
	require.Equal(t, documentID, tag.DocumentID)
	require.Equal(t, CategoryPayroll, tag.Category)

	notification, ok := decision.Actions[1].(engine.NotificationSend)
	require.True(t, ok)
	require.Equal(t, "payroll", notification.Audience)
}

func TestDocumentHandlerGeneralCategoryHasNoNotification(t *testing.T) {
	handler := NewDocumentHandler()
	decision, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    engine.EntityDocuments,
		Operation: engine.OperationInserted,
		New: engine.Record{
			"id":       uuid.New().String(),
			"filename": "notes.txt",
		},
	})
	require.NoError(t, err)
	require.Equal(t, CategoryGeneral, decision.Category)
	require.Len(t, decision.Actions, 1)
}

func TestDocumentHandlerRejectsMissingFilename(t *testing.T) {
	handler := NewDocumentHandler()
	_, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    engine.EntityDocuments,
		Operation: engine.OperationInserted,
		New:       engine.Record{"id": uuid.New().String()},
	})
	require.Error(t, err)
}
