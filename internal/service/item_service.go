package service

import (
	"context"
	"fmt"
	"strings"

	"lendit/internal/database"
	"lendit/internal/domain"
	"lendit/internal/events"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	comments domain.CommentRepository,
	eventBus domain.EventPublisher,
	clock domain.Clock,
	logger *zerolog.Logger,
) *ItemService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) error {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return err
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is blank: %w", database.ErrInvalidArgument)
	}
	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("item description is blank: %w", database.ErrInvalidArgument)
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, item); err != nil {
		return err
	}
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return nil
}

// Update applies a partial update. Non-owners are told the item does
// not exist.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, fmt.Errorf("item %d: %w", itemID, database.ErrNotFound)
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("item name is blank: %w", database.ErrInvalidArgument)
		}
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, fmt.Errorf("item description is blank: %w", database.ErrInvalidArgument)
		}
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns the item with its comments; the owner additionally sees
// the bookings closest to now on either side.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemDetail, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	detail, err := s.buildDetail(ctx, *item, userID == item.OwnerID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64) ([]models.ItemDetail, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}
	items, err := s.items.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	details := make([]models.ItemDetail, 0, len(items))
	for _, item := range items {
		detail, err := s.buildDetail(ctx, item, true)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// AddComment records feedback from a user whose rental of the item has
// already finished; anyone else is refused.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	author, err := s.users.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is blank: %w", database.ErrInvalidArgument)
	}

	finished, err := s.bookings.HasFinishedBooking(ctx, authorID, itemID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, fmt.Errorf("user %d has no finished booking for item %d: %w",
			authorID, itemID, database.ErrInvalidArgument)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{
			CommentID: comment.ID,
			ItemID:    itemID,
			AuthorID:  authorID,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

func (s *ItemService) buildDetail(ctx context.Context, item models.Item, forOwner bool) (*models.ItemDetail, error) {
	comments, err := s.comments.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	detail := &models.ItemDetail{Item: item, Comments: comments}
	if comments == nil {
		detail.Comments = []models.Comment{}
	}

	if forOwner {
		now := s.clock.Now()
		if detail.LastBooking, err = s.bookings.LastBookingForItem(ctx, item.ID, now); err != nil {
			return nil, err
		}
		if detail.NextBooking, err = s.bookings.NextBookingForItem(ctx, item.ID, now); err != nil {
			return nil, err
		}
	}
	return detail, nil
}
