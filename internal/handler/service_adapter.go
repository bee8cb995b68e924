package handler

import (
	"context"

	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/place"
	"github.com/hitoshi/placeshare/internal/user"
)

// PlaceServiceAdapter は place.Service を PlaceServiceInterface に適合させるアダプタ。
type PlaceServiceAdapter struct {
	svc *place.Service
}

// NewPlaceServiceAdapter はPlaceServiceAdapterを生成する。
func NewPlaceServiceAdapter(svc *place.Service) *PlaceServiceAdapter {
	return &PlaceServiceAdapter{svc: svc}
}

// GetPlace はPlaceをhandlerレスポンス型で返す。
func (a *PlaceServiceAdapter) GetPlace(ctx context.Context, placeID string) (*placeResponse, error) {
	p, err := a.svc.GetPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	resp := toPlaceResponse(p)
	return &resp, nil
}

// ListPlacesByUser はユーザーのPlace一覧をhandlerレスポンス型で返す。
func (a *PlaceServiceAdapter) ListPlacesByUser(ctx context.Context, userID string) ([]placeResponse, error) {
	places, err := a.svc.ListPlacesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]placeResponse, len(places))
	for i, p := range places {
		results[i] = toPlaceResponse(p)
	}
	return results, nil
}

// CreatePlace はPlaceを作成しhandlerレスポンス型で返す。
func (a *PlaceServiceAdapter) CreatePlace(ctx context.Context, caller model.CallerIdentity, in place.CreateInput) (*placeResponse, error) {
	p, err := a.svc.CreatePlace(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	resp := toPlaceResponse(p)
	return &resp, nil
}

// UpdatePlace はPlaceを更新しhandlerレスポンス型で返す。
func (a *PlaceServiceAdapter) UpdatePlace(ctx context.Context, caller model.CallerIdentity, placeID string, in place.UpdateInput) (*placeResponse, error) {
	p, err := a.svc.UpdatePlace(ctx, caller, placeID, in)
	if err != nil {
		return nil, err
	}
	resp := toPlaceResponse(p)
	return &resp, nil
}

// DeletePlace はPlaceを削除する。
func (a *PlaceServiceAdapter) DeletePlace(ctx context.Context, caller model.CallerIdentity, placeID string) error {
	return a.svc.DeletePlace(ctx, caller, placeID)
}

// toPlaceResponse はドメインのPlaceをhandlerのレスポンス型に変換する。
func toPlaceResponse(p *model.Place) placeResponse {
	return placeResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Address:     p.Address,
		Location: locationResponse{
			Lat: p.Location.Lat,
			Lng: p.Location.Lng,
		},
		Creator: p.CreatorID,
	}
}

// UserServiceAdapter は user.Service を UserServiceInterface に適合させるアダプタ。
type UserServiceAdapter struct {
	svc *user.Service
}

// NewUserServiceAdapter はUserServiceAdapterを生成する。
func NewUserServiceAdapter(svc *user.Service) *UserServiceAdapter {
	return &UserServiceAdapter{svc: svc}
}

// ListUsers はユーザー一覧をhandlerレスポンス型で返す。
func (a *UserServiceAdapter) ListUsers(ctx context.Context) ([]userResponse, error) {
	users, err := a.svc.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]userResponse, len(users))
	for i, u := range users {
		places := u.Places
		if places == nil {
			places = []string{}
		}
		results[i] = userResponse{
			ID:     u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Image:  u.Image,
			Places: places,
		}
	}
	return results, nil
}

// Signup はサインアップしてhandlerレスポンス型で返す。
func (a *UserServiceAdapter) Signup(ctx context.Context, in user.SignupInput) (*authResponse, error) {
	sess, err := a.svc.Signup(ctx, in)
	if err != nil {
		return nil, err
	}
	return toAuthResponse(sess), nil
}

// Login はログインしてhandlerレスポンス型で返す。
func (a *UserServiceAdapter) Login(ctx context.Context, in user.LoginInput) (*authResponse, error) {
	sess, err := a.svc.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	return toAuthResponse(sess), nil
}

func toAuthResponse(sess *user.Session) *authResponse {
	return &authResponse{
		UserID: sess.UserID,
		Email:  sess.Email,
		Token:  sess.Token,
	}
}

// --- compile-time interface checks ---

var _ PlaceServiceInterface = (*PlaceServiceAdapter)(nil)
var _ UserServiceInterface = (*UserServiceAdapter)(nil)
