package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateEventPayload applies the conditional required-field policy: a
// published event must be complete, a draft only needs a title and status.
// existingCover is the event's current cover image on update (nil on create);
// a published event needs a cover from the payload or an existing one.
// Returns nil when the payload is valid.
func ValidateEventPayload(p *EventPayload, existingCover *string, now time.Time) ValidationErrors {
	errs := ValidationErrors{}

	if p.Title == "" {
		errs["title"] = "title is required"
	} else if len(p.Title) > 255 {
		errs["title"] = "title must be at most 255 characters"
	}
	if p.Status != EventStatusDraft && p.Status != EventStatusPublished {
		errs["status"] = "status must be draft or published"
	}

	published := p.Status == EventStatusPublished

	if published {
		if p.Description == nil || *p.Description == "" {
			errs["description"] = "description is required"
		}
		if p.PlatformName == nil || *p.PlatformName == "" {
			errs["platform_name"] = "platform name is required"
		}
		if p.MeetingLink == nil || *p.MeetingLink == "" {
			errs["meeting_link"] = "meeting link is required"
		}
		if p.StartTime == nil {
			errs["start_time"] = "start time is required"
		}
		if p.EndTime == nil {
			errs["end_time"] = "end time is required"
		}
		if p.Capacity == nil {
			errs["capacity"] = "capacity is required"
		}
		if p.Speaker == nil || *p.Speaker == "" {
			errs["speaker"] = "speaker is required"
		}
		if len(p.CategoryIDs) == 0 {
			errs["category_ids"] = "at least one category is required"
		}
		if p.CoverImage == nil && existingCover == nil {
			errs["cover_image"] = "cover image is required"
		}
		if p.StartTime != nil && !p.StartTime.After(now) {
			errs["start_time"] = "start time must be in the future"
		}
	}

	// Format and ordering rules apply to drafts too, for whatever is present.
	if p.MeetingLink != nil && *p.MeetingLink != "" {
		if err := validate.Var(*p.MeetingLink, "url"); err != nil {
			errs["meeting_link"] = "meeting link must be a valid URL"
		}
	}
	if p.StartTime != nil && p.EndTime != nil && !p.EndTime.After(*p.StartTime) {
		errs["end_time"] = "end time must be after start time"
	}
	if p.Capacity != nil && *p.Capacity < 1 {
		errs["capacity"] = "capacity must be at least 1"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
