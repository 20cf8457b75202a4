package services

import (
	"context"
	"errors"
	"strings"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/repository"
	"github.com/sirupsen/logrus"
)

// ProfileUpdate carries the optional fields of a profile edit. Nil pointers
// leave the stored value untouched.
type ProfileUpdate struct {
	Name     string
	Subjects *[]string
	Gender   string
	Goals    *[]string
}

type UserService struct {
	users   repository.UserRepository
	history repository.HistoryRepository
	hub     Broadcaster
}

func NewUserService(users repository.UserRepository, history repository.HistoryRepository, hub Broadcaster) *UserService {
	return &UserService{users: users, history: history, hub: hub}
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the update; an unknown gender is ignored rather
// than rejected.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if in.Subjects != nil {
		user.Subjects = normalizeSubjects(*in.Subjects)
	}
	if models.ValidGender(in.Gender) {
		user.Gender = in.Gender
	}
	if in.Goals != nil {
		user.Goals = nonNil(*in.Goals)
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.hub.UpdateSubjects(user.ID, user.Subjects)
	logrus.WithField("user_id", user.ID).Debug("Profile updated")
	return user, nil
}

// History lists the caller's room memberships, newest first.
func (s *UserService) History(ctx context.Context, userID uint) ([]models.RoomHistory, error) {
	return s.history.ListByUser(ctx, userID)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// normalizeSubjects trims each subject and drops blanks, so every matcher
// compares the stored values as-is.
func normalizeSubjects(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	for _, subj := range subjects {
		if subj = strings.TrimSpace(subj); subj != "" {
			out = append(out, subj)
		}
	}
	return out
}
