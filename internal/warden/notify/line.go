package notify

import (
	"context"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// LineSink sends push and reply messages through the LINE Messaging API.
type LineSink struct {
	client *linebot.Client
}

func NewLineSink(client *linebot.Client) *LineSink {
	return &LineSink{client: client}
}

func (s *LineSink) Push(ctx context.Context, userID, text string) error {
	_, err := s.client.PushMessage(userID, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	return err
}

func (s *LineSink) Reply(ctx context.Context, replyToken, text string) error {
	_, err := s.client.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	return err
}
