package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type ContractService struct {
	contracts ContractStore
	catalog   Catalog
	register  RegisterGenerator
	files     FileStore
	log       zerolog.Logger
}

func NewContractService(
	contracts ContractStore,
	catalog Catalog,
	register RegisterGenerator,
	files FileStore,
	log zerolog.Logger,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		catalog:   catalog,
		register:  register,
		files:     files,
		log:       log,
	}
}

func (s *ContractService) Get(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "contract")
	}
	if !contract.IsParticipant(principal.UserID) {
		return nil, ErrPermissionDenied
	}
	return contract, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// Export builds the xlsx register of every contract the caller is party to.
func (s *ContractService) Export(ctx context.Context, principal model.Principal) (*ExportResult, error) {
	owner, err := s.catalog.GetUser(ctx, principal.UserID)
	if err != nil {
		return nil, mapNotFound(err, "user")
	}

	contracts, err := s.contracts.ListByParticipant(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	content, err := s.register.Generate(model.ContractRegister{
		Owner:       *owner,
		GeneratedAt: now,
		Contracts:   contracts,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("contracts-%s.xlsx", now.Format("20060102-150405"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// PresignDocument returns a temporary download URL for one of the contract's
// stored documents. The key must already be attached to the contract.
func (s *ContractService) PresignDocument(ctx context.Context, contractID uuid.UUID, key string, principal model.Principal) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key is required", ErrInvalidInput)
	}

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return "", mapNotFound(err, "contract")
	}
	if !contract.IsParticipant(principal.UserID) {
		return "", ErrPermissionDenied
	}

	known := contract.ContractFile != nil && *contract.ContractFile == key
	for _, doc := range contract.Documents {
		if doc == key {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("%w: document", ErrNotFound)
	}

	return s.files.PresignGet(ctx, key, time.Hour)
}
