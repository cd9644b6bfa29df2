package handlers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/peoplehub/services/automation/internal/engine"
)

// Document categories inferred from filename heuristics
const (
	CategoryPayroll     = "payroll"
	CategoryContract    = "contract"
	CategoryCertificate = "certificate"
	CategoryIdentity    = "identity"
	CategoryGeneral     = "general"
)

// DocumentHandler classifies an uploaded document from its filename and
// metadata, tags it with the inferred category and notifies the payroll
// module when the document concerns it
type DocumentHandler struct{}

// NewDocumentHandler creates the document handler
func NewDocumentHandler() *DocumentHandler {
	return &DocumentHandler{}
}

func (h *DocumentHandler) Name() string { return NameDocumentUploaded }

func (h *DocumentHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	documentID := event.New.UUID("id")
	filename := event.New.String("filename")
	if documentID == uuid.Nil || filename == "" {
		return engine.Decision{}, errors.New("document event is missing id or filename")
	}

	category := ClassifyDocument(filename)

	decision := engine.Decision{
		Category: category,
		Actions: []engine.Action{
			engine.DocumentTag{DocumentID: documentID, Category: category},
		},
	}

	if category == CategoryPayroll {
		decision.Actions = append(decision.Actions, engine.NotificationSend{
			Recipient: event.New.UUID("owner_id"),
			Audience:  "payroll",
			Title:     "Payroll document uploaded",
			Body:      "Document " + filename + " was classified as payroll-related",
		})
	}

	return decision, nil
}

// ClassifyDocument infers a document category from its filename
func ClassifyDocument(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case containsAny(name, "payslip", "salary", "payroll", "wage"):
		return CategoryPayroll
	case containsAny(name, "contract", "agreement", "offer", "amendment"):
		return CategoryContract
	case containsAny(name, "certificate", "diploma", "training", "attestation"):
		return CategoryCertificate
	case containsAny(name, "passport", "id_card", "identity", "visa"):
		return CategoryIdentity
	default:
		return CategoryGeneral
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
