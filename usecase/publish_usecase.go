package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
	"instagram-relay/domain/repository"
	"instagram-relay/infrastructure/logger"
)

// PollConfig tunes the container status loop. Videos need a longer budget
// than images because platform-side transcoding is slower.
type PollConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

var (
	DefaultImagePoll = PollConfig{MaxAttempts: 10, Interval: 2 * time.Second}
	DefaultVideoPoll = PollConfig{MaxAttempts: 30, Interval: 5 * time.Second}
)

const (
	minCarouselItems = 2
	maxCarouselItems = 10
)

type IPublishUsecase interface {
	PublishImage(ctx context.Context, req *dto.PublishImageRequest) (*dto.PublishResponse, error)
	PublishVideo(ctx context.Context, req *dto.PublishVideoRequest) (*dto.PublishResponse, error)
	PublishCarousel(ctx context.Context, req *dto.PublishCarouselRequest) (*dto.PublishResponse, error)
	CheckPublishingLimit(ctx context.Context, accountID, accessToken string) (*model.PublishingLimit, error)
}

type publishUsecase struct {
	ig         repository.IInstagram
	publishLog repository.IPublishLog
	imagePoll  PollConfig
	videoPoll  PollConfig
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewPublishUsecase wires the workflow. publishLog may be nil; audit logging
// is then skipped.
func NewPublishUsecase(ig repository.IInstagram, publishLog repository.IPublishLog) *publishUsecase {
	return &publishUsecase{
		ig:         ig,
		publishLog: publishLog,
		imagePoll:  DefaultImagePoll,
		videoPoll:  DefaultVideoPoll,
		sleep:      sleepCtx,
	}
}

// WithPollConfig overrides the per-media-type polling budgets.
func (u *publishUsecase) WithPollConfig(image, video PollConfig) *publishUsecase {
	u.imagePoll = image
	u.videoPoll = video
	return u
}

// WithSleep substitutes the inter-poll wait; tests use it to run the loop
// without real delays.
func (u *publishUsecase) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *publishUsecase {
	u.sleep = sleep
	return u
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PublishImage runs create -> poll -> publish for a single image post.
func (u *publishUsecase) PublishImage(ctx context.Context, req *dto.PublishImageRequest) (*dto.PublishResponse, error) {
	if req.InstagramAccountID == "" || req.AccessToken == "" || req.ImageURL == "" {
		return nil, fmt.Errorf("%w: instagram_account_id, access_token and image_url are required", model.ErrInvalidArgument)
	}
	spec := model.MediaSpec{
		MediaType: model.MediaTypeImage,
		ImageURL:  req.ImageURL,
		Caption:   req.Caption,
	}
	return u.runWorkflow(ctx, req.InstagramAccountID, spec, req.AccessToken, u.imagePoll)
}

// PublishVideo runs the same workflow with the video polling budget.
// media_type REELS (default) or VIDEO selects the container variant.
func (u *publishUsecase) PublishVideo(ctx context.Context, req *dto.PublishVideoRequest) (*dto.PublishResponse, error) {
	if req.InstagramAccountID == "" || req.AccessToken == "" || req.VideoURL == "" {
		return nil, fmt.Errorf("%w: instagram_account_id, access_token and video_url are required", model.ErrInvalidArgument)
	}
	mediaType := model.MediaTypeReels
	switch strings.ToUpper(req.MediaType) {
	case "", "REELS":
	case "VIDEO":
		mediaType = model.MediaTypeVideo
	default:
		return nil, fmt.Errorf("%w: media_type must be REELS or VIDEO", model.ErrInvalidArgument)
	}
	spec := model.MediaSpec{
		MediaType: mediaType,
		VideoURL:  req.VideoURL,
		CoverURL:  req.CoverURL,
		Caption:   req.Caption,
	}
	return u.runWorkflow(ctx, req.InstagramAccountID, spec, req.AccessToken, u.videoPoll)
}

// PublishCarousel creates one child container per item sequentially (the
// platform rate-limits container creation, so no parallel fan-out), waits
// for every child to finish, then creates, polls, and publishes the parent.
func (u *publishUsecase) PublishCarousel(ctx context.Context, req *dto.PublishCarouselRequest) (*dto.PublishResponse, error) {
	if req.InstagramAccountID == "" || req.AccessToken == "" {
		return nil, fmt.Errorf("%w: instagram_account_id and access_token are required", model.ErrInvalidArgument)
	}
	if len(req.Items) < minCarouselItems || len(req.Items) > maxCarouselItems {
		return nil, fmt.Errorf("%w: carousel requires between %d and %d items, got %d",
			model.ErrInvalidArgument, minCarouselItems, maxCarouselItems, len(req.Items))
	}
	for i, item := range req.Items {
		if item.ImageURL == "" && item.VideoURL == "" {
			return nil, fmt.Errorf("%w: item %d needs image_url or video_url", model.ErrInvalidArgument, i)
		}
	}

	childIDs := make([]string, 0, len(req.Items))
	for i, item := range req.Items {
		spec := model.MediaSpec{IsCarouselItem: true}
		poll := u.imagePoll
		if item.VideoURL != "" {
			spec.MediaType = model.MediaTypeVideo
			spec.VideoURL = item.VideoURL
			poll = u.videoPoll
		} else {
			spec.MediaType = model.MediaTypeImage
			spec.ImageURL = item.ImageURL
		}
		childID, err := u.ig.CreateContainer(ctx, req.InstagramAccountID, spec, req.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("create carousel item %d: %w", i, err)
		}
		if err := u.PollUntilReady(ctx, childID, req.AccessToken, poll); err != nil {
			return nil, fmt.Errorf("carousel item %d: %w", i, err)
		}
		childIDs = append(childIDs, childID)
	}

	parentSpec := model.MediaSpec{
		MediaType: model.MediaTypeCarousel,
		Caption:   req.Caption,
		Children:  childIDs,
	}
	return u.runWorkflow(ctx, req.InstagramAccountID, parentSpec, req.AccessToken, u.videoPoll)
}

func (u *publishUsecase) runWorkflow(ctx context.Context, accountID string, spec model.MediaSpec, accessToken string, poll PollConfig) (*dto.PublishResponse, error) {
	containerID, err := u.ig.CreateContainer(ctx, accountID, spec, accessToken)
	if err != nil {
		return nil, err
	}
	if err := u.PollUntilReady(ctx, containerID, accessToken, poll); err != nil {
		return nil, err
	}
	mediaID, err := u.ig.PublishContainer(ctx, accountID, containerID, accessToken)
	if err != nil {
		return nil, err
	}

	permalink, err := u.ig.Permalink(ctx, mediaID, accessToken)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("mediaId", mediaID).Warn("Permalink lookup failed")
		permalink = ""
	}

	if u.publishLog != nil {
		rec := &model.PublishRecord{AccountID: accountID, MediaID: mediaID, MediaType: string(spec.MediaType)}
		if err := u.publishLog.Record(ctx, rec); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Publish audit record failed")
		}
	}

	return &dto.PublishResponse{Success: true, MediaID: mediaID, InstagramURL: permalink}, nil
}

// PollUntilReady blocks until the container reaches FINISHED, fails on
// ERROR/EXPIRED, and gives up after cfg.MaxAttempts with a fixed interval
// between status checks.
func (u *publishUsecase) PollUntilReady(ctx context.Context, containerID, accessToken string, cfg PollConfig) error {
	if cfg.MaxAttempts <= 0 {
		cfg = u.imagePoll
	}
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		status, err := u.ig.ContainerStatus(ctx, containerID, accessToken)
		if err != nil {
			return err
		}
		switch status {
		case model.ContainerFinished, model.ContainerPublished:
			return nil
		case model.ContainerError, model.ContainerExpired:
			return &model.ContainerFailedError{ContainerID: containerID, Status: status}
		}
		if attempt < cfg.MaxAttempts {
			if err := u.sleep(ctx, cfg.Interval); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("container %s after %d attempts: %w", containerID, cfg.MaxAttempts, model.ErrPollTimeout)
}

// CheckPublishingLimit is an advisory quota read; the workflow does not
// enforce the cap, concurrent callers can race past it.
func (u *publishUsecase) CheckPublishingLimit(ctx context.Context, accountID, accessToken string) (*model.PublishingLimit, error) {
	if accountID == "" || accessToken == "" {
		return nil, fmt.Errorf("%w: instagram_account_id and access_token are required", model.ErrInvalidArgument)
	}
	return u.ig.PublishingLimit(ctx, accountID, accessToken)
}
