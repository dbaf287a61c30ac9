package main

import (
	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"

	papercmd "github.com/goliatone/go-questionpaper/command"
	"github.com/goliatone/go-questionpaper/paper"
	paperqry "github.com/goliatone/go-questionpaper/query"
)

// registerHandlers subscribes paper commands and queries to the dispatcher and
// records them in reg when one is given.
func registerHandlers(reg *gcmd.Registry, svc paper.Service, cleanup *papercmd.CleanupPapersHandler) ([]dispatcher.Subscription, error) {
	if svc == nil {
		return nil, errors.New("paper service is required", errors.CategoryValidation).
			WithTextCode("SERVICE_REQUIRED")
	}
	if cleanup == nil {
		cleanup = papercmd.NewCleanupPapersHandler(svc)
	}

	generate := papercmd.NewGeneratePaperHandler(svc)
	del := papercmd.NewDeletePaperHandler(svc)
	history := paperqry.NewPaperHistoryHandler(svc)
	download := paperqry.NewDownloadPaperHandler(svc)

	subscriptions := []dispatcher.Subscription{
		dispatcher.SubscribeCommand(generate),
		dispatcher.SubscribeCommand(del),
		dispatcher.SubscribeCommand(cleanup),
		dispatcher.SubscribeQuery(history),
		dispatcher.SubscribeQuery(download),
	}

	if reg != nil {
		for _, handler := range []any{generate, del, cleanup, history, download} {
			if err := reg.RegisterCommand(handler); err != nil {
				return subscriptions, err
			}
		}
	}
	return subscriptions, nil
}
