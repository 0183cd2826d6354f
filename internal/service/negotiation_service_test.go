package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type negotiationFixture struct {
	service   *NegotiationService
	proposals *fakeProposalStore
	messages  *fakeMessageStore
	offers    *fakeOfferStore
	contracts *fakeContractStore
	catalog   *fakeCatalog
	files     *fakeFileStore
	notifier  *fakeNotifier
}

func newNegotiationFixture() *negotiationFixture {
	f := &negotiationFixture{
		proposals: newFakeProposalStore(),
		messages:  newFakeMessageStore(),
		offers:    newFakeOfferStore(),
		contracts: newFakeContractStore(),
		catalog:   newFakeCatalog(),
		files:     newFakeFileStore(),
		notifier:  &fakeNotifier{},
	}
	f.service = NewNegotiationService(
		f.proposals, f.messages, f.offers, f.contracts, f.catalog,
		fakeRenderer{}, f.files, f.notifier, zerolog.Nop(),
	)
	return f
}

func (f *negotiationFixture) seedUser(name string) uuid.UUID {
	id := uuid.New()
	f.catalog.users[id] = model.User{ID: id, FullName: name, Email: name + "@example.com"}
	return id
}

func TestSendOffer(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	proposer := uuid.New()
	receiver := uuid.New()
	proposal := f.proposals.seed(model.Proposal{
		Kind:       model.ProposalKindTechnology,
		ProposerID: proposer,
		ReceiverID: receiver,
		Status:     model.ProposalStatusNegotiating,
	})

	result, err := f.service.SendOffer(ctx, SendOfferInput{
		ProposalID: proposal.ID,
		Message:    "counter offer",
		Price:      1_200_000,
		Content:    "full package incl. training",
		Principal:  model.Principal{UserID: receiver},
	})
	require.NoError(t, err)

	assert.Equal(t, receiver, result.Message.SenderID)
	assert.True(t, result.Message.IsOffer)
	require.NotNil(t, result.Message.OfferID)
	assert.Equal(t, result.Offer.ID, *result.Message.OfferID)
	assert.Equal(t, 1_200_000.0, result.Offer.Price)
	assert.Equal(t, model.OfferStatusPending, result.Offer.Status)
}

func TestSendOffer_Validation(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()
	principal := model.Principal{UserID: uuid.New()}

	cases := []struct {
		name  string
		input SendOfferInput
	}{
		{"empty message", SendOfferInput{Message: " ", Content: "x", Price: 10, Principal: principal}},
		{"empty content", SendOfferInput{Message: "x", Content: "", Price: 10, Principal: principal}},
		{"zero price", SendOfferInput{Message: "x", Content: "x", Price: 0, Principal: principal}},
		{"negative price", SendOfferInput{Message: "x", Content: "x", Price: -5, Principal: principal}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.SendOffer(ctx, tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAcceptOffer_TechnologyFormation(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	submitter := f.seedUser("submitter")
	proposer := f.seedUser("proposer")
	tech := model.Technology{ID: uuid.New(), Title: "Coating process", SubmitterID: &submitter}
	f.catalog.technologies[tech.ID] = tech

	proposal := f.proposals.seed(model.Proposal{
		Kind:         model.ProposalKindTechnology,
		ProposerID:   proposer,
		ReceiverID:   submitter,
		TechnologyID: &tech.ID,
		Status:       model.ProposalStatusNegotiating,
	})
	offer := f.offers.seed(model.Offer{ProposalID: proposal.ID, Price: 1_200_000})

	result, err := f.service.AcceptOffer(ctx, offer.ID, model.Principal{UserID: submitter})
	require.NoError(t, err)

	assert.Equal(t, model.OfferStatusAccepted, result.Offer.Status)

	contract := result.Contract
	require.NotNil(t, contract)
	assert.Equal(t, submitter, contract.UserAID)
	assert.Equal(t, proposer, contract.UserBID)
	assert.Equal(t, 1_200_000.0, contract.Price)
	assert.Equal(t, model.ContractStatusInProgress, contract.Status)
	assert.Equal(t, []uuid.UUID{tech.ID}, contract.TechnologyIDs)

	// Technology deals move the proposal into contract signing.
	stored, err := f.proposals.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProposalStatusContactSigning, stored.Status)

	// The cover sheet lands in the file store and on the contract.
	key := "contracts/" + contract.ID.String() + "/cover-sheet.pdf"
	assert.Contains(t, f.files.objects, key)
	persisted, err := f.contracts.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Contains(t, persisted.Documents, key)
}

func TestAcceptOffer_ProjectFormation(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	owner := f.seedUser("owner")
	proposer := f.seedUser("proposer")
	project := model.Project{ID: uuid.New(), Name: "Pilot plant", OwnerID: &owner}
	f.catalog.projects[project.ID] = project
	t1, t2 := uuid.New(), uuid.New()
	f.catalog.projectTechs[project.ID] = []uuid.UUID{t1, t2}

	proposal := f.proposals.seed(model.Proposal{
		Kind:       model.ProposalKindProject,
		ProposerID: proposer,
		ReceiverID: owner,
		ProjectID:  &project.ID,
		Status:     model.ProposalStatusNegotiating,
	})
	offer := f.offers.seed(model.Offer{ProposalID: proposal.ID, Price: 500_000})

	result, err := f.service.AcceptOffer(ctx, offer.ID, model.Principal{UserID: proposer})
	require.NoError(t, err)

	contract := result.Contract
	assert.Equal(t, owner, contract.UserAID)
	assert.Equal(t, proposer, contract.UserBID)
	assert.ElementsMatch(t, []uuid.UUID{t1, t2}, contract.TechnologyIDs)

	// Project deals do not auto-advance the proposal status.
	stored, err := f.proposals.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProposalStatusNegotiating, stored.Status)
}

func TestAcceptOffer_DemandFormation(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	submitter := f.seedUser("submitter")
	demandOwner := f.seedUser("demand-owner")
	responder := f.seedUser("responder")

	tech := model.Technology{ID: uuid.New(), SubmitterID: &submitter}
	f.catalog.technologies[tech.ID] = tech
	demand := model.Demand{ID: uuid.New(), OwnerID: &demandOwner}
	f.catalog.demands[demand.ID] = demand

	proposal := f.proposals.seed(model.Proposal{
		Kind:         model.ProposalKindDemand,
		ProposerID:   responder,
		ReceiverID:   demandOwner,
		TechnologyID: &tech.ID,
		DemandID:     &demand.ID,
		Status:       model.ProposalStatusNegotiating,
	})
	offer := f.offers.seed(model.Offer{ProposalID: proposal.ID, Price: 750_000})

	result, err := f.service.AcceptOffer(ctx, offer.ID, model.Principal{UserID: demandOwner})
	require.NoError(t, err)

	// Demand deals bind the technology submitter to the demand owner, not the
	// responding proposer.
	contract := result.Contract
	assert.Equal(t, submitter, contract.UserAID)
	assert.Equal(t, demandOwner, contract.UserBID)
	assert.Equal(t, []uuid.UUID{tech.ID}, contract.TechnologyIDs)
}

func TestAcceptOffer_DoubleAcceptConflicts(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	submitter := f.seedUser("submitter")
	proposer := f.seedUser("proposer")
	tech := model.Technology{ID: uuid.New(), SubmitterID: &submitter}
	f.catalog.technologies[tech.ID] = tech

	proposal := f.proposals.seed(model.Proposal{
		Kind:         model.ProposalKindTechnology,
		ProposerID:   proposer,
		ReceiverID:   submitter,
		TechnologyID: &tech.ID,
		Status:       model.ProposalStatusNegotiating,
	})
	offer := f.offers.seed(model.Offer{ProposalID: proposal.ID, Price: 100})

	_, err := f.service.AcceptOffer(ctx, offer.ID, model.Principal{UserID: submitter})
	require.NoError(t, err)

	_, err = f.service.AcceptOffer(ctx, offer.ID, model.Principal{UserID: submitter})
	assert.ErrorIs(t, err, ErrConflict)

	// Exactly one contract was formed.
	_, err = f.contracts.GetByOfferID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Len(t, f.contracts.contracts, 1)
}

func TestRejectOffer(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	proposer := uuid.New()
	receiver := uuid.New()
	proposal := f.proposals.seed(model.Proposal{
		Kind:       model.ProposalKindTechnology,
		ProposerID: proposer,
		ReceiverID: receiver,
		Status:     model.ProposalStatusNegotiating,
	})
	offer := f.offers.seed(model.Offer{ProposalID: proposal.ID, Price: 100})

	rejected, err := f.service.RejectOffer(ctx, offer.ID, model.Principal{UserID: proposer})
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusRejected, rejected.Status)

	_, err = f.service.RejectOffer(ctx, offer.ID, model.Principal{UserID: proposer})
	assert.ErrorIs(t, err, ErrConflict)

	assert.Empty(t, f.contracts.contracts)
}

func TestRetryFormation(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	submitter := f.seedUser("submitter")
	proposer := f.seedUser("proposer")
	tech := model.Technology{ID: uuid.New(), SubmitterID: &submitter}
	f.catalog.technologies[tech.ID] = tech

	proposal := f.proposals.seed(model.Proposal{
		Kind:         model.ProposalKindTechnology,
		ProposerID:   proposer,
		ReceiverID:   submitter,
		TechnologyID: &tech.ID,
		Status:       model.ProposalStatusNegotiating,
	})

	// Accepted offer that never got its contract.
	offer := f.offers.seed(model.Offer{
		ProposalID: proposal.ID,
		Price:      300,
		Status:     model.OfferStatusAccepted,
	})

	contract, err := f.service.RetryFormation(ctx, offer.ID, model.Principal{UserID: proposer})
	require.NoError(t, err)
	assert.Equal(t, offer.ID, contract.OfferID)

	// Retrying again returns the existing contract instead of forming a second.
	again, err := f.service.RetryFormation(ctx, offer.ID, model.Principal{UserID: proposer})
	require.NoError(t, err)
	assert.Equal(t, contract.ID, again.ID)
	assert.Len(t, f.contracts.contracts, 1)
}

func TestRetryFormation_PendingOfferConflicts(t *testing.T) {
	f := newNegotiationFixture()

	proposal := f.proposals.seed(model.Proposal{
		Kind:       model.ProposalKindTechnology,
		ProposerID: uuid.New(),
		ReceiverID: uuid.New(),
	})
	offer := f.offers.seed(model.Offer{ProposalID: proposal.ID, Price: 100})

	_, err := f.service.RetryFormation(context.Background(), offer.ID, model.Principal{UserID: proposal.ProposerID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAcceptOffer_UnresolvedParties(t *testing.T) {
	f := newNegotiationFixture()
	ctx := context.Background()

	proposer := f.seedUser("proposer")
	receiver := f.seedUser("receiver")

	// Technology without a submitter cannot resolve party A.
	tech := model.Technology{ID: uuid.New()}
	f.catalog.technologies[tech.ID] = tech

	proposal := f.proposals.seed(model.Proposal{
		Kind:         model.ProposalKindTechnology,
		ProposerID:   proposer,
		ReceiverID:   receiver,
		TechnologyID: &tech.ID,
		Status:       model.ProposalStatusNegotiating,
	})
	offer := f.offers.seed(model.Offer{ProposalID: proposal.ID, Price: 100})

	_, err := f.service.AcceptOffer(ctx, offer.ID, model.Principal{UserID: proposer})
	assert.ErrorIs(t, err, ErrUnresolvedParties)
	assert.Empty(t, f.contracts.contracts)
}

func TestListMessages_OutsiderDenied(t *testing.T) {
	f := newNegotiationFixture()

	proposal := f.proposals.seed(model.Proposal{
		Kind:       model.ProposalKindTechnology,
		ProposerID: uuid.New(),
		ReceiverID: uuid.New(),
	})

	_, _, err := f.service.ListMessages(context.Background(), proposal.ID, 1, 20, model.Principal{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
