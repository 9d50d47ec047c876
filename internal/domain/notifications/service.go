package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore batches cap at 500 writes; commit early.
const batchSize = 450

// multicaster is the part of *messaging.Client used for push.
type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Service struct {
	client *firestore.Client
	push   multicaster
}

// NewService wires the store; msg may be nil, in which case only in-app
// notifications are written.
func NewService(client *firestore.Client, msg *messaging.Client) *Service {
	s := &Service{client: client}
	if msg != nil {
		s.push = msg
	}
	return s
}

func (s *Service) usersCol() *firestore.CollectionRef {
	return s.client.Collection("users")
}

func (s *Service) notificationsCol(uid string) *firestore.CollectionRef {
	return s.usersCol().Doc(uid).Collection("notifications")
}

// NotificationsQuery is the live feed for a user, newest first.
func (s *Service) NotificationsQuery(uid string) firestore.Query {
	return s.notificationsCol(uid).OrderBy("createdAt", firestore.Desc).Limit(50)
}

// GetNotifications gets notifications for a user
func (s *Service) GetNotifications(ctx context.Context, uid string, unreadOnly bool, limit int) (*NotificationsListResult, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	query := s.notificationsCol(uid).Query
	if unreadOnly {
		query = query.Where("read", "==", false)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query = query.OrderBy("createdAt", firestore.Desc).Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()
	notifications := []Notification{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get notifications: %w", err)
		}
		var n Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		n.ID = doc.Ref.ID
		notifications = append(notifications, n)
	}

	// unread count (simple scan)
	unreadIter := s.notificationsCol(uid).Where("read", "==", false).Select().Documents(ctx)
	defer unreadIter.Stop()
	unreadCount := int64(0)
	for {
		_, err := unreadIter.Next()
		if err != nil {
			if err != iterator.Done {
				log.Printf("[notifications] unread count for %s: %v", uid, err)
			}
			break
		}
		unreadCount++
	}

	return &NotificationsListResult{
		Notifications: notifications,
		UnreadCount:   unreadCount,
	}, nil
}

// MarkRead marks notifications as read
func (s *Service) MarkRead(ctx context.Context, uid string, input MarkReadInput) (int, error) {
	uid = strings.TrimSpace(uid)
	input.Trim()
	if uid == "" {
		return 0, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	now := time.Now().UTC()

	if input.MarkAll {
		iter := s.notificationsCol(uid).Where("read", "==", false).Documents(ctx)
		defer iter.Stop()
		batch := s.client.Batch()
		count := 0
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return 0, fmt.Errorf("failed to get notifications: %w", err)
			}
			batch.Set(doc.Ref, map[string]interface{}{
				"read":   true,
				"readAt": now,
			}, firestore.MergeAll)
			count++
			if count%batchSize == 0 {
				if _, err := batch.Commit(ctx); err != nil {
					return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
				}
				batch = s.client.Batch()
			}
		}
		if count%batchSize != 0 {
			if _, err := batch.Commit(ctx); err != nil {
				return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
			}
		}
		return count, nil
	}

	if input.NotificationID != "" {
		_, err := s.notificationsCol(uid).Doc(input.NotificationID).Update(ctx, []firestore.Update{
			{Path: "read", Value: true},
			{Path: "readAt", Value: now},
		})
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: notification %s", ErrNotFound, input.NotificationID)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to mark notification as read: %w", err)
		}
		return 1, nil
	}

	return 0, fmt.Errorf("%w: notificationId or markAll is required", ErrBadRequest)
}

// DeleteNotification deletes a single notification doc for the user
func (s *Service) DeleteNotification(ctx context.Context, uid, notificationID string) error {
	uid = strings.TrimSpace(uid)
	notificationID = strings.TrimSpace(notificationID)
	if uid == "" || notificationID == "" {
		return fmt.Errorf("%w: uid and notificationId are required", ErrBadRequest)
	}
	if _, err := s.notificationsCol(uid).Doc(notificationID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// CreateNotification creates a single in-app notification
func (s *Service) CreateNotification(ctx context.Context, senderUID string, input CreateNotificationInput) (string, error) {
	input.Trim()
	if input.TargetUID == "" || input.Title == "" {
		return "", fmt.Errorf("%w: targetUid and title are required", ErrBadRequest)
	}
	if input.Type == "" {
		input.Type = TypeGeneral
	}

	ref, _, err := s.notificationsCol(input.TargetUID).Add(ctx, map[string]interface{}{
		"title":     input.Title,
		"body":      input.Body,
		"type":      input.Type,
		"data":      input.Data,
		"read":      false,
		"senderUid": strings.TrimSpace(senderUID),
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return ref.ID, nil
}

// Notify writes an in-app notification for every recipient and pushes to the
// ones with a registered device. Returns the number of in-app docs written.
func (s *Service) Notify(ctx context.Context, uids []string, msg Message) (int, error) {
	msg.Title = strings.TrimSpace(msg.Title)
	if msg.Title == "" {
		return 0, fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if msg.Type == "" {
		msg.Type = TypeGeneral
	}
	targets := recipients(uids, msg.SenderUID)
	if len(targets) == 0 {
		return 0, nil
	}

	data := make(map[string]interface{}, len(msg.Data))
	for k, v := range msg.Data {
		data[k] = v
	}

	now := time.Now().UTC()
	batch := s.client.Batch()
	sent := 0
	for _, uid := range targets {
		batch.Create(s.notificationsCol(uid).NewDoc(), map[string]interface{}{
			"title":     msg.Title,
			"body":      msg.Body,
			"type":      msg.Type,
			"data":      data,
			"read":      false,
			"senderUid": msg.SenderUID,
			"createdAt": now,
		})
		sent++
		if sent%batchSize == 0 {
			if _, err := batch.Commit(ctx); err != nil {
				return 0, fmt.Errorf("failed to send notifications: %w", err)
			}
			batch = s.client.Batch()
		}
	}
	if sent%batchSize != 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return 0, fmt.Errorf("failed to send notifications: %w", err)
		}
	}

	if s.push != nil {
		if err := s.pushTo(ctx, targets, msg); err != nil {
			// in-app docs are already written
			log.Printf("[push] %s: %v", msg.Type, err)
		}
	}
	return sent, nil
}

// NotifyAsync runs Notify off the request path.
func (s *Service) NotifyAsync(uids []string, msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Notify(ctx, uids, msg); err != nil {
			log.Printf("[notifications] %s: %v", msg.Type, err)
		}
	}()
}

// Broadcast resolves the audience and then notifies it. Member-wide lists are
// read here so that a failed lookup never reaches the caller's write.
func (s *Service) Broadcast(ctx context.Context, audience func(context.Context) ([]string, error), msg Message) (int, error) {
	uids, err := audience(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	return s.Notify(ctx, uids, msg)
}

func (s *Service) BroadcastAsync(audience func(context.Context) ([]string, error), msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if _, err := s.Broadcast(ctx, audience, msg); err != nil {
			log.Printf("[notifications] broadcast %s: %v", msg.Type, err)
		}
	}()
}

// pushTo loads device tokens and sends multicasts of at most 500 tokens.
func (s *Service) pushTo(ctx context.Context, uids []string, msg Message) error {
	tokens, err := s.pushTokens(ctx, uids)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	list := make([]string, 0, len(tokens))
	owner := make(map[string]string, len(tokens))
	for uid, tok := range tokens {
		list = append(list, tok)
		owner[tok] = uid
	}

	var stale []string
	for _, part := range chunk(list, 500) {
		resp, err := s.push.SendEachForMulticast(ctx, buildMulticast(part, msg))
		if err != nil {
			return fmt.Errorf("multicast: %w", err)
		}
		for _, tok := range unregisteredTokens(part, resp) {
			stale = append(stale, owner[tok])
		}
	}
	s.clearTokens(ctx, stale)
	return nil
}

func (s *Service) pushTokens(ctx context.Context, uids []string) (map[string]string, error) {
	refs := make([]*firestore.DocumentRef, 0, len(uids))
	for _, uid := range uids {
		refs = append(refs, s.usersCol().Doc(uid))
	}
	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to load push tokens: %w", err)
	}
	out := map[string]string{}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		tok, _ := snap.Data()["pushToken"].(string)
		if tok != "" {
			out[snap.Ref.ID] = tok
		}
	}
	return out, nil
}

func (s *Service) clearTokens(ctx context.Context, uids []string) {
	for _, uid := range uids {
		_, err := s.usersCol().Doc(uid).Update(ctx, []firestore.Update{
			{Path: "pushToken", Value: firestore.Delete},
		})
		if err != nil {
			log.Printf("[push] failed to clear token for %s: %v", uid, err)
			continue
		}
		log.Printf("[push] cleared unregistered token for %s", uid)
	}
}

func buildMulticast(tokens []string, msg Message) *messaging.MulticastMessage {
	data := map[string]string{"type": msg.Type}
	for k, v := range msg.Data {
		data[k] = v
	}
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
	}
}

// unregisteredTokens pairs each failed response with the token it was sent to.
func unregisteredTokens(tokens []string, resp *messaging.BatchResponse) []string {
	if resp == nil {
		return nil
	}
	var out []string
	for i, r := range resp.Responses {
		if i >= len(tokens) || r == nil || r.Success {
			continue
		}
		if messaging.IsUnregistered(r.Error) {
			out = append(out, tokens[i])
		}
	}
	return out
}

func isNotFound(err error) bool { return status.Code(err) == codes.NotFound }
