// Package bot wires the classifieds dialogue onto the Telegram transport:
// decoded events go into the controller, rendered screens go out through the
// live interface message.
package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/kropbot/core/config"
	coretelegram "github.com/m3rciful/kropbot/core/telegram"
	"github.com/m3rciful/kropbot/core/telegram/callbacks"
	"github.com/m3rciful/kropbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/kropbot/core/telegram/helpers"
	"github.com/m3rciful/kropbot/core/telegram/router"
	tgsender "github.com/m3rciful/kropbot/core/telegram/sender"
	"github.com/m3rciful/kropbot/core/telegram/state"
	"github.com/m3rciful/kropbot/core/telegram/ui"
	"github.com/m3rciful/kropbot/internal/board"
)

var _ ui.FallbackProvider = (*App)(nil)

// App assembles the bot: controller, gateway, dispatcher, and the command
// and callback registry. It satisfies the shared cmd runner's TelegramApp.
type App struct {
	cfg        *coreconfig.Config
	store      board.Store
	sessions   state.Manager
	gw         *TeleGateway
	ctl        *Controller
	registry   *coretelegram.Registry
	dispatcher *tgsender.Dispatcher
	cleanup    func(context.Context) error
}

// OnShutdown registers a hook that runs when the bot stops, e.g. closing the
// database connection.
func (a *App) OnShutdown(fn func(context.Context) error) {
	a.cleanup = fn
}

// New builds the application around an initialized store and session backend.
func New(cfg *coreconfig.Config, store board.Store, sessions state.Manager) *App {
	dispatcher := tgsender.NewDispatcher(tgsender.Options{})
	gw := NewGateway(dispatcher)

	a := &App{
		cfg:        cfg,
		store:      store,
		sessions:   sessions,
		gw:         gw,
		ctl:        NewController(store, sessions, gw, cfg.Board),
		registry:   coretelegram.NewRegistry(),
		dispatcher: dispatcher,
	}
	a.wireCommands()
	a.wireCallbacks()
	a.wireTextSteps()
	return a
}

func (a *App) wireCommands() {
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     a.handleAction(Action{Type: ActionStart}),
		Description: "Open the board",
	})
	a.registry.RegisterCommand("/help", commands.Command{
		Handler:     a.handleAction(Action{Type: ActionHelp}),
		Description: "How the board works",
	})
	a.registry.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Board statistics",
		AdminOnly:   true,
		Hidden:      true,
	})
	a.registry.SetTextFallback(a.UnknownText())
	a.registry.SetCallbackNotFound(a.UnknownCallback())
}

func (a *App) wireCallbacks() {
	plain := map[string]ActionType{
		cbAdd:     ActionAddListing,
		cbView:    ActionViewBoard,
		cbMy:      ActionMyListings,
		cbHelp:    ActionHelp,
		cbConfirm: ActionConfirm,
		cbCancel:  ActionCancel,
		cbSkip:    ActionSkip,
		cbHome:    ActionHome,
		cbBack:    ActionBack,
		cbNoop:    ActionNoop,
	}
	for key, t := range plain {
		_ = a.registry.RegisterCallback(key, a.handleAction(Action{Type: t}))
	}

	kinds := map[string]ActionType{
		cbKind:     ActionPickKind,
		cbViewKind: ActionViewKind,
	}
	for key, t := range kinds {
		_ = a.registry.RegisterCallback(key, a.handleKindAction(t))
	}

	numeric := map[string]ActionType{
		cbCat:     ActionPickCategory,
		cbViewCat: ActionViewCategory,
		cbPage:    ActionPage,
		cbMyPage:  ActionMyPage,
		cbEdit:    ActionEdit,
		cbDelete:  ActionDelete,
	}
	for key, t := range numeric {
		_ = a.registry.RegisterCallback(key, a.handleIntAction(t))
	}
}

// wireTextSteps registers the free-text input steps with the FSM dispatcher.
func (a *App) wireTextSteps() {
	textHandler := a.handleAction(Action{Type: ActionText})
	state.RegisterHandler(StepAddDescription, textHandler)
	state.RegisterHandler(StepAddContact, textHandler)
	state.RegisterHandler(StepEditDesc, textHandler)
}

func (a *App) handleAction(action Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		a.gw.Bind(c.Bot().(*tele.Bot))
		return a.ctl.Handle(tghelpers.BuildContext(c), buildEvent(c, action))
	}
}

func (a *App) handleKindAction(t ActionType) tele.HandlerFunc {
	return func(c tele.Context) error {
		a.gw.Bind(c.Bot().(*tele.Bot))
		kind, ok := board.ParseKind(callbacks.CallbackPayload(c))
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		}
		return a.ctl.Handle(tghelpers.BuildContext(c), buildEvent(c, Action{Type: t, Kind: kind}))
	}
}

func (a *App) handleIntAction(t ActionType) tele.HandlerFunc {
	return func(c tele.Context) error {
		a.gw.Bind(c.Bot().(*tele.Bot))
		n, err := callbacks.PayloadInt64(c)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		}
		return a.ctl.Handle(tghelpers.BuildContext(c), buildEvent(c, Action{Type: t, Int: n}))
	}
}

func (a *App) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	counts, err := a.store.CountByCategory(ctx)
	if err != nil {
		return tghelpers.SendText(c, noticeGenericFailure)
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return tghelpers.SendMDV2(c, statsText(total, counts, a.cfg.Board.Categories))
}

// buildEvent decodes the update into a transport-free event.
func buildEvent(c tele.Context, action Action) *Event {
	ev := &Event{Action: action}
	if sender := c.Sender(); sender != nil {
		ev.UserID = sender.ID
		if sender.Username != "" {
			ev.UserDisplay = "@" + sender.Username
		}
	}
	if chat := c.Chat(); chat != nil {
		ev.ChatID = chat.ID
	}
	if cb := c.Callback(); cb != nil {
		ev.CallbackID = cb.ID
	} else if msg := c.Message(); msg != nil {
		ev.MessageID = msg.ID
		ev.Text = c.Text()
	}
	return ev
}

// UnknownText nudges users who type outside an input step towards the
// buttons.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, unknownTextReply)
	}
}

// UnknownDocument rejects stray attachments.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, unknownTextReply)
	}
}

// UnknownCallback answers button presses no handler claims.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
}

// TelegramRunOptions exposes the run configuration to the shared cmd runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.sessions, a.registry, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)

	onLimited := func(c tele.Context) error {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: rateLimitedReply})
		}
		return nil
	}

	opts := coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Dispatcher:  a.dispatcher,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, onLimited),
		Routes:      routes,
	}
	if a.cleanup != nil {
		cleanup := a.cleanup
		opts.OnStop = func(ctx context.Context, _ coretelegram.Runtime) error {
			return cleanup(ctx)
		}
	}
	return opts, nil
}
