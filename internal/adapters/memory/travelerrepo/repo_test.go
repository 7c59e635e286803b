package travelerrepo

import (
	"context"
	"testing"
	"time"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
)

func TestRepo_CreateAndGet(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	now := time.Unix(100, 0).UTC()
	avatar := "https://img.example.com/a.png"

	tr := travelerrepo.Traveler{
		ID:          domain.TravelerID("t1"),
		Subject:     domain.SubjectID("sub-1"),
		DisplayName: "Alice Smith",
		Email:       "alice@example.com",
		AvatarURL:   &avatar,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.Create(context.Background(), tr); err != nil {
		t.Fatalf("Create() err=%v", err)
	}

	gotByID, err := r.GetByID(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	if gotByID.ID != tr.ID || gotByID.Subject != tr.Subject || gotByID.DisplayName != tr.DisplayName {
		t.Fatalf("GetByID()=%+v, want %+v", gotByID, tr)
	}

	// Returned records must not alias stored state.
	*gotByID.AvatarURL = "mutated"
	again, _ := r.GetByID(context.Background(), tr.ID)
	if *again.AvatarURL != avatar {
		t.Fatalf("GetByID().AvatarURL=%q, want %q", *again.AvatarURL, avatar)
	}

	gotBySub, err := r.GetBySubject(context.Background(), tr.Subject)
	if err != nil {
		t.Fatalf("GetBySubject() err=%v", err)
	}
	if gotBySub.ID != tr.ID {
		t.Fatalf("GetBySubject().ID=%q, want %q", gotBySub.ID, tr.ID)
	}
}

func TestRepo_CreateRejectsDuplicateSubject(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	t1 := travelerrepo.Traveler{ID: "t1", Subject: "sub-1", DisplayName: "A"}
	t2 := travelerrepo.Traveler{ID: "t2", Subject: "sub-1", DisplayName: "B"}

	if err := r.Create(context.Background(), t1); err != nil {
		t.Fatalf("Create(t1) err=%v", err)
	}
	if err := r.Create(context.Background(), t2); err != travelerrepo.ErrSubjectAlreadyBound {
		t.Fatalf("Create(t2) err=%v, want %v", err, travelerrepo.ErrSubjectAlreadyBound)
	}
	if err := r.Create(context.Background(), t1); err != travelerrepo.ErrAlreadyExists {
		t.Fatalf("Create(t1 again) err=%v, want %v", err, travelerrepo.ErrAlreadyExists)
	}
}

func TestRepo_UpdateRequiresExistingAndImmutableSubject(t *testing.T) {
	t.Parallel()

	r := NewRepo()

	tr := travelerrepo.Traveler{ID: "t1", Subject: "sub-1", DisplayName: "Alice"}
	if err := r.Update(context.Background(), tr); err != travelerrepo.ErrNotFound {
		t.Fatalf("Update(nonexistent) err=%v, want %v", err, travelerrepo.ErrNotFound)
	}

	if err := r.Create(context.Background(), tr); err != nil {
		t.Fatalf("Create() err=%v", err)
	}

	changedSubject := travelerrepo.Traveler{ID: "t1", Subject: "sub-2", DisplayName: "Alice"}
	if err := r.Update(context.Background(), changedSubject); err != travelerrepo.ErrSubjectAlreadyBound {
		t.Fatalf("Update(changed subject) err=%v, want %v", err, travelerrepo.ErrSubjectAlreadyBound)
	}

	updated := travelerrepo.Traveler{ID: "t1", Subject: "sub-1", DisplayName: "Alice Z"}
	if err := r.Update(context.Background(), updated); err != nil {
		t.Fatalf("Update() err=%v", err)
	}
	got, err := r.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	if got.DisplayName != "Alice Z" {
		t.Fatalf("GetByID() after update=%+v, want displayName=%q", got, "Alice Z")
	}
}
