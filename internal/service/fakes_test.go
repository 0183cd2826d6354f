package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/repository"
)

// In-memory stores standing in for the gorm repositories. All of them are
// mutex-protected so concurrency tests exercise real interleavings.

type fakeProposalStore struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]model.Proposal
}

func newFakeProposalStore() *fakeProposalStore {
	return &fakeProposalStore{proposals: map[uuid.UUID]model.Proposal{}}
}

func (f *fakeProposalStore) Create(_ context.Context, proposal model.Proposal) (*model.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	if proposal.Status == "" {
		proposal.Status = model.ProposalStatusPending
	}
	proposal.CreatedAt = time.Now()
	f.proposals[proposal.ID] = proposal
	out := proposal
	return &out, nil
}

func (f *fakeProposalStore) GetByID(_ context.Context, id uuid.UUID) (*model.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	proposal, ok := f.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := proposal
	return &out, nil
}

func (f *fakeProposalStore) List(_ context.Context, filter repository.ProposalFilter) ([]model.Proposal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Proposal
	for _, p := range f.proposals {
		if p.ProposerID != filter.ParticipantID && p.ReceiverID != filter.ParticipantID {
			continue
		}
		if filter.Kind != nil && p.Kind != *filter.Kind {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		result = append(result, p)
	}
	return result, int64(len(result)), nil
}

func (f *fakeProposalStore) TransitionStatus(_ context.Context, id uuid.UUID, to model.ProposalStatus, notFrom []model.ProposalStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	proposal, ok := f.proposals[id]
	if !ok {
		return false, nil
	}
	for _, blocked := range notFrom {
		if proposal.Status == blocked {
			return false, nil
		}
	}
	proposal.Status = to
	f.proposals[id] = proposal
	return true, nil
}

func (f *fakeProposalStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.ProposalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	proposal, ok := f.proposals[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	proposal.Status = status
	f.proposals[id] = proposal
	return nil
}

func (f *fakeProposalStore) seed(proposal model.Proposal) model.Proposal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	if proposal.Status == "" {
		proposal.Status = model.ProposalStatusPending
	}
	f.proposals[proposal.ID] = proposal
	return proposal
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages map[uuid.UUID]model.NegotiationMessage
	order    []uuid.UUID
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: map[uuid.UUID]model.NegotiationMessage{}}
}

func (f *fakeMessageStore) CreateMessage(_ context.Context, message model.NegotiationMessage) (*model.NegotiationMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	f.messages[message.ID] = message
	f.order = append(f.order, message.ID)
	out := message
	return &out, nil
}

func (f *fakeMessageStore) GetMessage(_ context.Context, id uuid.UUID) (*model.NegotiationMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := message
	return &out, nil
}

func (f *fakeMessageStore) AttachOffer(_ context.Context, messageID, offerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[messageID]
	if !ok || message.OfferID != nil {
		return gorm.ErrRecordNotFound
	}
	message.OfferID = &offerID
	f.messages[messageID] = message
	return nil
}

func (f *fakeMessageStore) ListByProposal(_ context.Context, proposalID uuid.UUID, _, _ int) ([]model.NegotiationMessage, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.NegotiationMessage
	for _, id := range f.order {
		if f.messages[id].ProposalID == proposalID {
			result = append(result, f.messages[id])
		}
	}
	return result, int64(len(result)), nil
}

type fakeOfferStore struct {
	mu     sync.Mutex
	offers map[uuid.UUID]model.Offer
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{offers: map[uuid.UUID]model.Offer{}}
}

func (f *fakeOfferStore) Create(_ context.Context, offer model.Offer) (*model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer.ID = uuid.New()
	if offer.Status == "" {
		offer.Status = model.OfferStatusPending
	}
	offer.CreatedAt = time.Now()
	f.offers[offer.ID] = offer
	out := offer
	return &out, nil
}

func (f *fakeOfferStore) GetByID(_ context.Context, id uuid.UUID) (*model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer, ok := f.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := offer
	return &out, nil
}

func (f *fakeOfferStore) MarkAccepted(_ context.Context, id uuid.UUID) (bool, error) {
	return f.mark(id, model.OfferStatusAccepted)
}

func (f *fakeOfferStore) MarkRejected(_ context.Context, id uuid.UUID) (bool, error) {
	return f.mark(id, model.OfferStatusRejected)
}

func (f *fakeOfferStore) mark(id uuid.UUID, status model.OfferStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer, ok := f.offers[id]
	if !ok || offer.Status != model.OfferStatusPending {
		return false, nil
	}
	offer.Status = status
	f.offers[id] = offer
	return true, nil
}

func (f *fakeOfferStore) seed(offer model.Offer) model.Offer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	if offer.Status == "" {
		offer.Status = model.OfferStatusPending
	}
	f.offers[offer.ID] = offer
	return offer
}

type fakeContractStore struct {
	mu        sync.Mutex
	contracts map[uuid.UUID]model.Contract
	byOffer   map[uuid.UUID]uuid.UUID
}

func newFakeContractStore() *fakeContractStore {
	return &fakeContractStore{
		contracts: map[uuid.UUID]model.Contract{},
		byOffer:   map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeContractStore) Create(_ context.Context, contract model.Contract) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byOffer[contract.OfferID]; exists {
		return nil, gorm.ErrDuplicatedKey
	}
	contract.ID = uuid.New()
	if contract.Status == "" {
		contract.Status = model.ContractStatusInProgress
	}
	contract.CreatedAt = time.Now()
	f.contracts[contract.ID] = contract
	f.byOffer[contract.OfferID] = contract.ID
	out := contract
	return &out, nil
}

func (f *fakeContractStore) GetByID(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := contract
	out.Documents = append([]string(nil), contract.Documents...)
	return &out, nil
}

func (f *fakeContractStore) GetByOfferID(_ context.Context, offerID uuid.UUID) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byOffer[offerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := f.contracts[id]
	return &out, nil
}

func (f *fakeContractStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.ContractStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.Status = status
	f.contracts[id] = contract
	return nil
}

func (f *fakeContractStore) MarkSigned(_ context.Context, id uuid.UUID, contractFile *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.Status = model.ContractStatusSigned
	if contractFile != nil {
		contract.ContractFile = contractFile
	}
	f.contracts[id] = contract
	return nil
}

func (f *fakeContractStore) AddDocuments(_ context.Context, id uuid.UUID, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, key := range keys {
		seen := false
		for _, existing := range contract.Documents {
			if existing == key {
				seen = true
				break
			}
		}
		if !seen {
			contract.Documents = append(contract.Documents, key)
		}
	}
	f.contracts[id] = contract
	return nil
}

func (f *fakeContractStore) ListByParticipant(_ context.Context, userID uuid.UUID) ([]model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Contract
	for _, c := range f.contracts {
		if c.UserAID == userID || c.UserBID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeContractStore) seed(contract model.Contract) model.Contract {
	f.mu.Lock()
	defer f.mu.Unlock()
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	if contract.Status == "" {
		contract.Status = model.ContractStatusInProgress
	}
	f.contracts[contract.ID] = contract
	if contract.OfferID != uuid.Nil {
		f.byOffer[contract.OfferID] = contract.ID
	}
	return contract
}

type fakeStepStore struct {
	mu    sync.Mutex
	steps map[uuid.UUID]model.ContractStep
}

func newFakeStepStore() *fakeStepStore {
	return &fakeStepStore{steps: map[uuid.UUID]model.ContractStep{}}
}

func (f *fakeStepStore) Create(_ context.Context, step model.ContractStep) (*model.ContractStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step.ID = uuid.New()
	step.Status = model.DeriveStepStatus(step.Approvals)
	for i := range step.Approvals {
		step.Approvals[i].ID = uuid.New()
		step.Approvals[i].StepID = step.ID
	}
	step.CreatedAt = time.Now()
	f.steps[step.ID] = step
	return copyStep(step), nil
}

func (f *fakeStepStore) GetByID(_ context.Context, id uuid.UUID) (*model.ContractStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step, ok := f.steps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyStep(step), nil
}

func (f *fakeStepStore) Decide(_ context.Context, input repository.DecideInput) (*model.ContractStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step, ok := f.steps[input.StepID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	now := time.Now()
	found := false
	for i := range step.Approvals {
		if step.Approvals[i].Party == input.Party {
			step.Approvals[i].UserID = input.UserID
			step.Approvals[i].Decision = input.Decision
			step.Approvals[i].Note = input.Note
			step.Approvals[i].DecidedAt = &now
			found = true
			break
		}
	}
	if !found {
		step.Approvals = append(step.Approvals, model.Approval{
			ID:        uuid.New(),
			StepID:    step.ID,
			Party:     input.Party,
			UserID:    input.UserID,
			Decision:  input.Decision,
			Note:      input.Note,
			DecidedAt: &now,
		})
	}
	step.Status = model.DeriveStepStatus(step.Approvals)
	step.UpdatedAt = now
	f.steps[step.ID] = step
	return copyStep(step), nil
}

func (f *fakeStepStore) List(_ context.Context, filter repository.StepFilter) ([]model.ContractStep, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.ContractStep
	for _, step := range f.steps {
		if filter.ContractID != nil && step.ContractID != *filter.ContractID {
			continue
		}
		if filter.Step != nil && step.Step != *filter.Step {
			continue
		}
		if filter.Status != nil && step.Status != *filter.Status {
			continue
		}
		result = append(result, *copyStep(step))
	}
	return result, int64(len(result)), nil
}

func copyStep(step model.ContractStep) *model.ContractStep {
	out := step
	out.Approvals = append([]model.Approval(nil), step.Approvals...)
	out.Attachments = append([]string(nil), step.Attachments...)
	return &out
}

type fakeLogStore struct {
	mu   sync.Mutex
	logs map[uuid.UUID]model.ContractLog
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{logs: map[uuid.UUID]model.ContractLog{}}
}

func (f *fakeLogStore) Create(_ context.Context, log model.ContractLog) (*model.ContractLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = uuid.New()
	if log.Status == "" {
		log.Status = model.ContractLogStatusPending
	}
	log.CreatedAt = time.Now()
	f.logs[log.ID] = log
	out := log
	return &out, nil
}

func (f *fakeLogStore) GetByID(_ context.Context, id uuid.UUID) (*model.ContractLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.logs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := log
	return &out, nil
}

func (f *fakeLogStore) Update(_ context.Context, id uuid.UUID, update repository.ContractLogUpdate) (*model.ContractLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.logs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if update.Status != nil {
		log.Status = *update.Status
	}
	if update.Reason != nil {
		log.Reason = update.Reason
	}
	if update.IsDoneContract != nil {
		log.IsDoneContract = *update.IsDoneContract
	}
	if update.ContractID != nil {
		log.ContractID = *update.ContractID
	}
	log.UpdatedAt = time.Now()
	f.logs[id] = log
	out := log
	return &out, nil
}

func (f *fakeLogStore) seed(log model.ContractLog) model.ContractLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Status == "" {
		log.Status = model.ContractLogStatusPending
	}
	f.logs[log.ID] = log
	return log
}

type fakeCatalog struct {
	users        map[uuid.UUID]model.User
	technologies map[uuid.UUID]model.Technology
	projects     map[uuid.UUID]model.Project
	demands      map[uuid.UUID]model.Demand
	projectTechs map[uuid.UUID][]uuid.UUID
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		users:        map[uuid.UUID]model.User{},
		technologies: map[uuid.UUID]model.Technology{},
		projects:     map[uuid.UUID]model.Project{},
		demands:      map[uuid.UUID]model.Demand{},
		projectTechs: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeCatalog) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (f *fakeCatalog) GetTechnology(_ context.Context, id uuid.UUID) (*model.Technology, error) {
	tech, ok := f.technologies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &tech, nil
}

func (f *fakeCatalog) GetProject(_ context.Context, id uuid.UUID) (*model.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &project, nil
}

func (f *fakeCatalog) ListProjectTechnologyIDs(_ context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return f.projectTechs[projectID], nil
}

func (f *fakeCatalog) GetDemand(_ context.Context, id uuid.UUID) (*model.Demand, error) {
	demand, ok := f.demands[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &demand, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Publish(_ context.Context, event string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(model.ContractSheet) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

type fakeFileStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: map[string][]byte{}}
}

func (f *fakeFileStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeFileStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.local/" + key, nil
}
