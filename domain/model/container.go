package model

import "time"

// ContainerStatus is the platform-side processing state of a media container.
type ContainerStatus string

const (
	ContainerInProgress ContainerStatus = "IN_PROGRESS"
	ContainerFinished   ContainerStatus = "FINISHED"
	ContainerError      ContainerStatus = "ERROR"
	ContainerExpired    ContainerStatus = "EXPIRED"
	ContainerPublished  ContainerStatus = "PUBLISHED"
)

// Terminal reports whether the status ends the polling loop.
func (s ContainerStatus) Terminal() bool {
	switch s {
	case ContainerFinished, ContainerError, ContainerExpired, ContainerPublished:
		return true
	}
	return false
}

// MediaType selects the container-creation variant.
type MediaType string

const (
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeReels    MediaType = "REELS"
	MediaTypeCarousel MediaType = "CAROUSEL"
)

// MediaSpec describes one piece of media to be turned into a container.
type MediaSpec struct {
	MediaType      MediaType
	ImageURL       string
	VideoURL       string
	CoverURL       string
	Caption        string
	IsCarouselItem bool
	Children       []string
}

// PublishingLimit is the platform's content publishing quota for an account.
type PublishingLimit struct {
	Used  int
	Total int
}

// PublishRecord is one row of the publish audit log.
type PublishRecord struct {
	ID        int64
	AccountID string
	MediaID   string
	MediaType string
	CreatedAt time.Time
}
