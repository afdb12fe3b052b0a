package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
)

type mockInstagram struct {
	mock.Mock
}

func (m *mockInstagram) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockInstagram) ExchangeCode(ctx context.Context, code string) (string, string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockInstagram) LongLivedToken(ctx context.Context, shortToken string) (string, int64, error) {
	args := m.Called(ctx, shortToken)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockInstagram) RefreshToken(ctx context.Context, longLivedToken string) (string, int64, error) {
	args := m.Called(ctx, longLivedToken)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockInstagram) UserInfo(ctx context.Context, accessToken string) (*dto.AuthResult, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResult), args.Error(1)
}

func (m *mockInstagram) CreateContainer(ctx context.Context, accountID string, spec model.MediaSpec, accessToken string) (string, error) {
	args := m.Called(ctx, accountID, spec, accessToken)
	return args.String(0), args.Error(1)
}

func (m *mockInstagram) ContainerStatus(ctx context.Context, containerID, accessToken string) (model.ContainerStatus, error) {
	args := m.Called(ctx, containerID, accessToken)
	return args.Get(0).(model.ContainerStatus), args.Error(1)
}

func (m *mockInstagram) PublishContainer(ctx context.Context, accountID, containerID, accessToken string) (string, error) {
	args := m.Called(ctx, accountID, containerID, accessToken)
	return args.String(0), args.Error(1)
}

func (m *mockInstagram) Permalink(ctx context.Context, mediaID, accessToken string) (string, error) {
	args := m.Called(ctx, mediaID, accessToken)
	return args.String(0), args.Error(1)
}

func (m *mockInstagram) PublishingLimit(ctx context.Context, accountID, accessToken string) (*model.PublishingLimit, error) {
	args := m.Called(ctx, accountID, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublishingLimit), args.Error(1)
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newPublishUsecase(ig *mockInstagram) *publishUsecase {
	return NewPublishUsecase(ig, nil).WithSleep(noSleep)
}

func TestPublishImage_Success(t *testing.T) {
	ig := new(mockInstagram)
	ig.On("CreateContainer", mock.Anything, "17841400000", mock.Anything, "token").Return("container-1", nil)
	ig.On("ContainerStatus", mock.Anything, "container-1", "token").Return(model.ContainerFinished, nil).Once()
	ig.On("PublishContainer", mock.Anything, "17841400000", "container-1", "token").Return("media-9", nil)
	ig.On("Permalink", mock.Anything, "media-9", "token").Return("https://www.instagram.com/p/abc/", nil)

	uc := newPublishUsecase(ig)
	res, err := uc.PublishImage(context.Background(), &dto.PublishImageRequest{
		InstagramAccountID: "17841400000",
		AccessToken:        "token",
		ImageURL:           "https://example.com/photo.jpg",
		Caption:            "hello",
	})

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "media-9", res.MediaID)
	assert.Equal(t, "https://www.instagram.com/p/abc/", res.InstagramURL)
	ig.AssertExpectations(t)
}

func TestPublishImage_MissingFields(t *testing.T) {
	ig := new(mockInstagram)
	uc := newPublishUsecase(ig)

	_, err := uc.PublishImage(context.Background(), &dto.PublishImageRequest{
		InstagramAccountID: "17841400000",
		AccessToken:        "token",
	})

	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	ig.AssertNotCalled(t, "CreateContainer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishImage_PollThenFinish(t *testing.T) {
	ig := new(mockInstagram)
	ig.On("CreateContainer", mock.Anything, "acct", mock.Anything, "token").Return("c1", nil)
	ig.On("ContainerStatus", mock.Anything, "c1", "token").Return(model.ContainerInProgress, nil).Twice()
	ig.On("ContainerStatus", mock.Anything, "c1", "token").Return(model.ContainerFinished, nil).Once()
	ig.On("PublishContainer", mock.Anything, "acct", "c1", "token").Return("m1", nil)
	ig.On("Permalink", mock.Anything, "m1", "token").Return("", nil)

	uc := newPublishUsecase(ig)
	res, err := uc.PublishImage(context.Background(), &dto.PublishImageRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		ImageURL:           "https://example.com/photo.jpg",
	})

	assert.NoError(t, err)
	assert.Equal(t, "m1", res.MediaID)
	ig.AssertNumberOfCalls(t, "ContainerStatus", 3)
}

func TestPublishImage_ContainerError(t *testing.T) {
	ig := new(mockInstagram)
	ig.On("CreateContainer", mock.Anything, "acct", mock.Anything, "token").Return("c1", nil)
	ig.On("ContainerStatus", mock.Anything, "c1", "token").Return(model.ContainerError, nil)

	uc := newPublishUsecase(ig)
	_, err := uc.PublishImage(context.Background(), &dto.PublishImageRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		ImageURL:           "https://example.com/photo.jpg",
	})

	var failed *model.ContainerFailedError
	assert.ErrorAs(t, err, &failed)
	assert.Equal(t, "c1", failed.ContainerID)
	ig.AssertNotCalled(t, "PublishContainer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishImage_PollTimeout(t *testing.T) {
	ig := new(mockInstagram)
	ig.On("CreateContainer", mock.Anything, "acct", mock.Anything, "token").Return("c1", nil)
	ig.On("ContainerStatus", mock.Anything, "c1", "token").Return(model.ContainerInProgress, nil)

	uc := NewPublishUsecase(ig, nil).
		WithPollConfig(PollConfig{MaxAttempts: 3, Interval: time.Millisecond}, DefaultVideoPoll).
		WithSleep(noSleep)
	_, err := uc.PublishImage(context.Background(), &dto.PublishImageRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		ImageURL:           "https://example.com/photo.jpg",
	})

	assert.ErrorIs(t, err, model.ErrPollTimeout)
	ig.AssertNumberOfCalls(t, "ContainerStatus", 3)
}

func TestPublishVideo_DefaultsToReels(t *testing.T) {
	ig := new(mockInstagram)
	matchReels := mock.MatchedBy(func(spec model.MediaSpec) bool {
		return spec.MediaType == model.MediaTypeReels && spec.VideoURL == "https://example.com/v.mp4"
	})
	ig.On("CreateContainer", mock.Anything, "acct", matchReels, "token").Return("c1", nil)
	ig.On("ContainerStatus", mock.Anything, "c1", "token").Return(model.ContainerFinished, nil)
	ig.On("PublishContainer", mock.Anything, "acct", "c1", "token").Return("m1", nil)
	ig.On("Permalink", mock.Anything, "m1", "token").Return("", nil)

	uc := newPublishUsecase(ig)
	_, err := uc.PublishVideo(context.Background(), &dto.PublishVideoRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		VideoURL:           "https://example.com/v.mp4",
	})

	assert.NoError(t, err)
	ig.AssertExpectations(t)
}

func TestPublishVideo_RejectsUnknownMediaType(t *testing.T) {
	ig := new(mockInstagram)
	uc := newPublishUsecase(ig)

	_, err := uc.PublishVideo(context.Background(), &dto.PublishVideoRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		VideoURL:           "https://example.com/v.mp4",
		MediaType:          "STORY",
	})

	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestPublishCarousel_ItemCountBounds(t *testing.T) {
	ig := new(mockInstagram)
	uc := newPublishUsecase(ig)

	one := []dto.CarouselItem{{ImageURL: "https://example.com/1.jpg"}}
	_, err := uc.PublishCarousel(context.Background(), &dto.PublishCarouselRequest{
		InstagramAccountID: "acct", AccessToken: "token", Items: one,
	})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	eleven := make([]dto.CarouselItem, 11)
	for i := range eleven {
		eleven[i] = dto.CarouselItem{ImageURL: "https://example.com/n.jpg"}
	}
	_, err = uc.PublishCarousel(context.Background(), &dto.PublishCarouselRequest{
		InstagramAccountID: "acct", AccessToken: "token", Items: eleven,
	})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	ig.AssertNotCalled(t, "CreateContainer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishCarousel_Success(t *testing.T) {
	ig := new(mockInstagram)
	matchChild := mock.MatchedBy(func(spec model.MediaSpec) bool { return spec.IsCarouselItem })
	matchParent := mock.MatchedBy(func(spec model.MediaSpec) bool {
		return spec.MediaType == model.MediaTypeCarousel && len(spec.Children) == 2
	})
	ig.On("CreateContainer", mock.Anything, "acct", matchChild, "token").Return("child-1", nil).Once()
	ig.On("CreateContainer", mock.Anything, "acct", matchChild, "token").Return("child-2", nil).Once()
	ig.On("CreateContainer", mock.Anything, "acct", matchParent, "token").Return("parent", nil).Once()
	ig.On("ContainerStatus", mock.Anything, mock.Anything, "token").Return(model.ContainerFinished, nil)
	ig.On("PublishContainer", mock.Anything, "acct", "parent", "token").Return("media-1", nil)
	ig.On("Permalink", mock.Anything, "media-1", "token").Return("https://www.instagram.com/p/xyz/", nil)

	uc := newPublishUsecase(ig)
	res, err := uc.PublishCarousel(context.Background(), &dto.PublishCarouselRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		Caption:            "two shots",
		Items: []dto.CarouselItem{
			{ImageURL: "https://example.com/1.jpg"},
			{ImageURL: "https://example.com/2.jpg"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "media-1", res.MediaID)
	ig.AssertExpectations(t)
}

func TestPublishCarousel_ChildFailureStopsFanOut(t *testing.T) {
	ig := new(mockInstagram)
	matchChild := mock.MatchedBy(func(spec model.MediaSpec) bool { return spec.IsCarouselItem })
	ig.On("CreateContainer", mock.Anything, "acct", matchChild, "token").Return("child-1", nil).Once()
	ig.On("ContainerStatus", mock.Anything, "child-1", "token").Return(model.ContainerError, nil)

	uc := newPublishUsecase(ig)
	_, err := uc.PublishCarousel(context.Background(), &dto.PublishCarouselRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		Items: []dto.CarouselItem{
			{ImageURL: "https://example.com/1.jpg"},
			{ImageURL: "https://example.com/2.jpg"},
		},
	})

	var failed *model.ContainerFailedError
	assert.ErrorAs(t, err, &failed)
	ig.AssertNumberOfCalls(t, "CreateContainer", 1)
	ig.AssertNotCalled(t, "PublishContainer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_PermalinkFailureIsNonFatal(t *testing.T) {
	ig := new(mockInstagram)
	ig.On("CreateContainer", mock.Anything, "acct", mock.Anything, "token").Return("c1", nil)
	ig.On("ContainerStatus", mock.Anything, "c1", "token").Return(model.ContainerFinished, nil)
	ig.On("PublishContainer", mock.Anything, "acct", "c1", "token").Return("m1", nil)
	ig.On("Permalink", mock.Anything, "m1", "token").Return("", errors.New("boom"))

	uc := newPublishUsecase(ig)
	res, err := uc.PublishImage(context.Background(), &dto.PublishImageRequest{
		InstagramAccountID: "acct",
		AccessToken:        "token",
		ImageURL:           "https://example.com/photo.jpg",
	})

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.InstagramURL)
}

func TestCheckPublishingLimit(t *testing.T) {
	ig := new(mockInstagram)
	ig.On("PublishingLimit", mock.Anything, "acct", "token").Return(&model.PublishingLimit{Used: 30, Total: 100}, nil)

	uc := newPublishUsecase(ig)
	limit, err := uc.CheckPublishingLimit(context.Background(), "acct", "token")

	assert.NoError(t, err)
	assert.Equal(t, 30, limit.Used)

	_, err = uc.CheckPublishingLimit(context.Background(), "", "token")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
