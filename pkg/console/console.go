// Package console implements the interactive settings console: a paginated,
// button-driven menu over the settings catalog, with reply-correlated edit
// sessions, synchronous toggles and bulk resets. The chat transport is
// abstracted behind Messenger so the core stays testable without a gateway.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
	"github.com/small-frappuccino/mirrorcore/pkg/errutil"
	"github.com/small-frappuccino/mirrorcore/pkg/log"
)

// Namespace is the first token of every console action string.
const Namespace = "cfg"

// DefaultReplyTimeout is the wall-clock deadline for reply-correlated edit
// sessions, measured from arm time. Message traffic does not reset it.
const DefaultReplyTimeout = 60 * time.Second

// Action is one button press routed to the console.
type Action struct {
	ChatID    string
	UserID    string
	MessageID string // the console message, edited in place
	Data      string // "cfg <verb> <args...>"
}

// Config wires the console's collaborators.
type Config struct {
	Catalog      SettingsCatalog
	Store        ConfigStore
	Effects      SideEffectDispatcher
	Blobs        BlobHandler
	Messenger    Messenger
	ReplyTimeout time.Duration                // defaults to DefaultReplyTimeout
	Cascade      func(member string) []string // enabled-set member -> dependent keys
}

// Console routes actions to the renderer and controllers and owns the
// per-chat navigation and correlation state.
type Console struct {
	catalog    SettingsCatalog
	messenger  Messenger
	renderer   *MenuRenderer
	nav        *NavTracker
	correlator *Correlator
	edits      *EditController
	toggles    *ToggleController
	blobs      BlobHandler
	timeout    time.Duration
}

// New builds a console. Catalog, Store and Messenger are required; Effects,
// Blobs and Cascade may be nil when the deployment has no use for them.
func New(cfg Config) (*Console, error) {
	if cfg.Catalog == nil || cfg.Store == nil || cfg.Messenger == nil {
		return nil, fmt.Errorf("console: catalog, store and messenger are required")
	}
	timeout := cfg.ReplyTimeout
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	return &Console{
		catalog:    cfg.Catalog,
		messenger:  cfg.Messenger,
		renderer:   NewMenuRenderer(cfg.Catalog),
		nav:        NewNavTracker(),
		correlator: NewCorrelator(),
		edits:      NewEditController(cfg.Catalog, cfg.Store, cfg.Effects),
		toggles:    NewToggleController(cfg.Catalog, cfg.Store, cfg.Effects, cfg.Cascade),
		blobs:      cfg.Blobs,
		timeout:    timeout,
	}, nil
}

// HandleMessage offers an inbound chat message to the armed edit session for
// its chat/user, if any. It reports whether the message was consumed; normal
// traffic is never intercepted otherwise.
func (c *Console) HandleMessage(in Incoming) bool {
	return c.correlator.Deliver(in)
}

// HandleAction parses and executes one console action. Every failure path
// ends by redrawing a valid menu state so the console never gets stuck.
func (c *Console) HandleAction(ctx context.Context, act Action) error {
	fields := strings.Fields(act.Data)
	if len(fields) < 2 || fields[0] != Namespace {
		return fmt.Errorf("console: malformed action %q", act.Data)
	}
	verb, args := fields[1], fields[2:]

	switch verb {
	case "main":
		return c.showRoot(act)
	case "start":
		return c.showCategory(act, args)
	case "mode":
		return c.switchMode(act, args)
	case "view":
		return c.viewKey(act, args)
	case "editvar":
		return c.editKey(ctx, act, args)
	case "upload":
		return c.uploadKey(ctx, act, args)
	case "toggle":
		return c.toggleKey(act, args)
	case "default":
		return c.resetKey(act, args)
	case "togmember":
		return c.toggleMember(act, args)
	case "enableall":
		return c.setAllMembers(act, args, true)
	case "disableall":
		return c.setAllMembers(act, args, false)
	case "resetcat":
		return c.resetCategory(act, args)
	case "cancel":
		c.correlator.Cancel(act.ChatID, act.UserID)
		return nil
	case "close":
		c.correlator.Cancel(act.ChatID, act.UserID)
		c.nav.Drop(act.ChatID, act.UserID)
		return c.messenger.DeleteMessage(act.ChatID, act.MessageID)
	default:
		return fmt.Errorf("console: unknown verb %q", verb)
	}
}

func (c *Console) showRoot(act Action) error {
	c.nav.Put(act.ChatID, act.UserID, NavState{Category: RootCategory, Page: 0, Mode: ModeView})
	menu := c.renderer.RenderRoot()
	return c.messenger.EditMenu(act.ChatID, act.MessageID, menu)
}

func (c *Console) showCategory(act Action, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("console: start needs a category")
	}
	category := args[0]
	page := 0
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			page = n
		}
	}
	st := c.nav.Get(act.ChatID, act.UserID)
	st.Category = category
	st.Page = page
	return c.redraw(act, st)
}

func (c *Console) switchMode(act Action, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("console: mode needs category, page and mode")
	}
	st := c.nav.Get(act.ChatID, act.UserID)
	st.Category = args[0]
	if n, err := strconv.Atoi(args[1]); err == nil {
		st.Page = n
	}
	if args[2] == "edit" {
		st.Mode = ModeEdit
	} else {
		st.Mode = ModeView
	}
	return c.redraw(act, st)
}

func (c *Console) viewKey(act Action, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("console: view needs a key")
	}
	key := args[0]
	desc, ok := c.catalog.Describe(key)
	if !ok {
		return c.messenger.Popup(act.ChatID, act.UserID, "Unknown setting: "+key)
	}
	val := catalog.FormatValue(desc, c.catalog.Get(key))
	text := fmt.Sprintf("%s (%s)\nCurrent: %s\nDefault: %s\n\n%s",
		desc.Key, desc.Type, val, catalog.FormatValue(desc, desc.Default), desc.Help)
	return c.messenger.Popup(act.ChatID, act.UserID, text)
}

// editKey arms a reply-correlated session for a text value, blocks until it
// resolves, commits the result and redraws the menu the user came from.
func (c *Console) editKey(ctx context.Context, act Action, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("console: editvar needs a key")
	}
	key := args[0]
	desc, ok := c.catalog.Describe(key)
	if !ok {
		return c.messenger.Popup(act.ChatID, act.UserID, "Unknown setting: "+key)
	}
	if desc.Blob != catalog.BlobNone {
		return c.uploadKey(ctx, act, args)
	}

	st := c.nav.Get(act.ChatID, act.UserID)
	if err := c.messenger.EditMenu(act.ChatID, act.MessageID, c.renderer.RenderEditor(desc, st, c.timeout)); err != nil {
		return err
	}

	sess := c.correlator.Arm(act.ChatID, act.UserID, KindText, c.timeout)
	res := sess.Wait()

	switch res.Outcome {
	case OutcomeMessage:
		c.commitAndNotify(act, key, res.Message)
	case OutcomeCancelled:
		errutil.LogBestEffort("notify cancel", c.messenger.Notify(act.ChatID, "Edit cancelled."))
	case OutcomeTimeout:
		// Silent: the menu simply reverts unchanged.
	}
	return c.redraw(act, st)
}

// uploadKey is editKey for blob-valued settings: the session resolves on a
// photo or document, the blob handler stores the payload, and the resulting
// reference string is committed like any other value.
func (c *Console) uploadKey(ctx context.Context, act Action, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("console: upload needs a key")
	}
	key := args[0]
	desc, ok := c.catalog.Describe(key)
	if !ok || desc.Blob == catalog.BlobNone {
		return c.messenger.Popup(act.ChatID, act.UserID, "Setting does not accept uploads: "+key)
	}
	if c.blobs == nil {
		return c.messenger.Popup(act.ChatID, act.UserID, "Uploads are not available.")
	}

	kinds := KindDocument
	if desc.Blob == catalog.BlobPhoto {
		kinds = KindPhoto
	}

	st := c.nav.Get(act.ChatID, act.UserID)
	if err := c.messenger.EditMenu(act.ChatID, act.MessageID, c.renderer.RenderEditor(desc, st, c.timeout)); err != nil {
		return err
	}

	sess := c.correlator.Arm(act.ChatID, act.UserID, kinds, c.timeout)
	res := sess.Wait()

	switch res.Outcome {
	case OutcomeMessage:
		ref, err := c.blobs.HandleBlob(ctx, key, res.Message)
		if err != nil {
			errutil.LogBestEffort("notify blob failure",
				c.messenger.Notify(act.ChatID, fmt.Sprintf("Upload for %s rejected: %v", key, err)))
			break
		}
		result, err := c.edits.Apply(key, ref)
		c.reportCommit(act, key, result, err, res.Message)
	case OutcomeCancelled:
		errutil.LogBestEffort("notify cancel", c.messenger.Notify(act.ChatID, "Upload cancelled."))
	case OutcomeTimeout:
	}
	return c.redraw(act, st)
}

func (c *Console) commitAndNotify(act Action, key string, msg Incoming) {
	result, err := c.edits.Commit(key, msg.Text)
	c.reportCommit(act, key, result, err, msg)
}

func (c *Console) reportCommit(act Action, key string, result CommitResult, err error, msg Incoming) {
	if err != nil {
		errutil.LogBestEffort("notify commit failure",
			c.messenger.Notify(act.ChatID, fmt.Sprintf("Could not update %s: %v", key, err)))
		return
	}
	// Consumed replies are deleted so the chat keeps a single console message.
	errutil.LogBestEffort("delete reply", c.messenger.DeleteMessage(msg.ChatID, msg.MessageID))
	if result.Fallback {
		errutil.LogBestEffort("notify fallback",
			c.messenger.Notify(act.ChatID, fmt.Sprintf("Could not parse the value; %s was set to its default.", key)))
	}
	if result.Warning != "" {
		errutil.LogBestEffort("notify warning", c.messenger.Notify(act.ChatID, result.Warning))
	}
}

func (c *Console) toggleKey(act Action, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("console: toggle needs a key and a value")
	}
	key := args[0]
	val := args[1] == "true"
	if err := c.toggles.Toggle(key, val); err != nil {
		errutil.LogBestEffort("notify toggle failure",
			c.messenger.Notify(act.ChatID, fmt.Sprintf("Could not toggle %s: %v", key, err)))
	}
	return c.redraw(act, c.navForKey(act, key))
}

func (c *Console) resetKey(act Action, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("console: default needs a key")
	}
	key := args[0]
	// The reset button also appears on the editor prompt, so a live session
	// for this pair must be released before committing.
	c.correlator.Cancel(act.ChatID, act.UserID)
	result, err := c.edits.Apply(key, c.catalog.DefaultOf(key))
	if err != nil {
		errutil.LogBestEffort("notify reset failure",
			c.messenger.Notify(act.ChatID, fmt.Sprintf("Could not reset %s: %v", key, err)))
	} else if result.Warning != "" {
		errutil.LogBestEffort("notify warning", c.messenger.Notify(act.ChatID, result.Warning))
	}
	return c.redraw(act, c.navForKey(act, key))
}

func (c *Console) toggleMember(act Action, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("console: togmember needs key, member and value")
	}
	key, member := args[0], args[1]
	enable := args[2] == "true"
	if err := c.toggles.ToggleMember(key, member, enable); err != nil {
		errutil.LogBestEffort("notify member toggle failure",
			c.messenger.Notify(act.ChatID, fmt.Sprintf("Could not toggle %s: %v", member, err)))
	}
	return c.redraw(act, c.navForKey(act, key))
}

func (c *Console) setAllMembers(act Action, args []string, enable bool) error {
	if len(args) < 1 {
		return fmt.Errorf("console: enableall/disableall needs a key")
	}
	key := args[0]
	var err error
	if enable {
		err = c.toggles.EnableAll(key)
	} else {
		err = c.toggles.DisableAll(key)
	}
	if err != nil {
		errutil.LogBestEffort("notify set-all failure",
			c.messenger.Notify(act.ChatID, fmt.Sprintf("Could not update %s: %v", key, err)))
	}
	return c.redraw(act, c.navForKey(act, key))
}

func (c *Console) resetCategory(act Action, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("console: resetcat needs a category")
	}
	category := args[0]
	if err := c.toggles.ResetCategory(category); err != nil {
		errutil.LogBestEffort("notify reset failure",
			c.messenger.Notify(act.ChatID, fmt.Sprintf("Could not reset %s: %v", category, err)))
	}
	st := c.nav.Get(act.ChatID, act.UserID)
	st.Category = category
	return c.redraw(act, st)
}

// navForKey resolves the menu a key action should return to, preferring the
// stored navigation state when it already points at the key's category.
func (c *Console) navForKey(act Action, key string) NavState {
	st := c.nav.Get(act.ChatID, act.UserID)
	if cat := c.catalog.CategoryOf(key); cat != "" && cat != st.Category {
		st.Category = cat
		st.Page = 0
	}
	return st
}

// redraw renders st (normalizing the page), persists it as the chat's
// navigation state, and edits the console message in place.
func (c *Console) redraw(act Action, st NavState) error {
	if st.Category == RootCategory {
		c.nav.Put(act.ChatID, act.UserID, st)
		return c.messenger.EditMenu(act.ChatID, act.MessageID, c.renderer.RenderRoot())
	}
	menu, page := c.renderer.Render(st.Category, st.Page, st.Mode)
	st.Page = page
	c.nav.Put(act.ChatID, act.UserID, st)
	if err := c.messenger.EditMenu(act.ChatID, act.MessageID, menu); err != nil {
		log.Application().Error("Menu redraw failed", "chat", act.ChatID, "category", st.Category, "error", err)
		return err
	}
	return nil
}
