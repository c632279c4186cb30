package notify

import (
	"fmt"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"

	"bitvcheck/internal/audit"
)

// Send delivers a message to one shoutrrr service URL.
func Send(serviceURL, message string) error {
	sender, err := shoutrrr.CreateSender(serviceURL)
	if err != nil {
		return fmt.Errorf("creating sender: %w", err)
	}

	params := types.Params{}
	for _, e := range sender.Send(message, &params) {
		if e != nil {
			return fmt.Errorf("sending: %w", e)
		}
	}
	return nil
}

// Notifier alerts every configured service when a page scores below the
// threshold.
type Notifier struct {
	URLs      []string
	Template  string
	Threshold float64
	Logger    *zap.SugaredLogger

	send func(serviceURL, message string) error
}

func NewNotifier(urls []string, tmpl string, threshold float64, logger *zap.SugaredLogger) (*Notifier, error) {
	// Fail on template syntax now rather than on the first low score.
	if _, err := parse(tmpl); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Notifier{URLs: urls, Template: tmpl, Threshold: threshold, Logger: logger, send: Send}, nil
}

// Below reports whether res should trigger a notification.
func (n *Notifier) Below(res *audit.RunResult) bool {
	return res != nil && res.Score < n.Threshold
}

// Notify sends one message per service when res is below the threshold. It
// reports whether a message was rendered. Every service is attempted; the
// first delivery error is returned.
func (n *Notifier) Notify(res *audit.RunResult) (bool, error) {
	if !n.Below(res) {
		return false, nil
	}
	msg, err := Render(n.Template, BuildTemplateData(res, n.Threshold))
	if err != nil {
		return false, err
	}

	var firstErr error
	for i, u := range n.URLs {
		if err := n.send(u, msg); err != nil {
			// Service URLs carry credentials; log the position only.
			n.Logger.Warnw("notification failed", "service", i, "url", res.URL, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("notify service %d: %w", i, err)
			}
			continue
		}
		n.Logger.Debugw("notification sent", "service", i, "url", res.URL)
	}
	return true, firstErr
}
