package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/board"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/config"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"github.com/spf13/cobra"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Work with the opportunity board from the terminal",
	}
	cmd.AddCommand(
		newShowCmd(),
		newStageCmd(),
		newStatusCmd(),
		newProgressCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newAssignCmd(),
		newTasksCmd(),
		newContactsCmd(),
	)
	return cmd
}

// tokenSource prefers CRM_API_TOKEN over the token saved by `dopaflow login`.
func tokenSource(cfg *config.Config) (crmapi.TokenSource, error) {
	if cfg.APIToken != "" {
		return session.StaticToken(cfg.APIToken), nil
	}
	return session.NewFileStore(cfg.TokenFile)
}

func newCLIClient(cmd *cobra.Command, cfg *config.Config, tokens crmapi.TokenSource) (*crmapi.Client, *logger.Logger, error) {
	log, err := logger.NewWithWriter("dopaflow-cli", cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	api, err := crmapi.New(crmapi.Config{
		BaseURL: cfg.APIBaseURL,
		Tokens:  tokens,
		Timeout: cfg.APITimeout,
		Logger:  log.Named("crmapi"),
	})
	if err != nil {
		return nil, nil, err
	}
	return api, log, nil
}

// openBoard opens a session with the configured token and loads the board.
func openBoard(cmd *cobra.Command, query url.Values) (*board.Controller, error) {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	tokens, err := tokenSource(cfg)
	if err != nil {
		return nil, err
	}
	api, log, err := newCLIClient(cmd, cfg, tokens)
	if err != nil {
		return nil, err
	}

	sess, err := (&session.Provider{Tokens: tokens, Users: api}).Open(ctx)
	if err != nil {
		return nil, loginHint(err)
	}

	ctrl := board.NewController(api, sess, board.Options{
		ProgressStep:        cfg.ProgressStep,
		OpportunityPageSize: cfg.OpportunityPageSize,
		ContactPageSize:     cfg.ContactPageSize,
		NotificationTTL:     cfg.NotificationTTL,
	}, log.Named("board"))

	if err := ctrl.Load(ctx, query); err != nil {
		return nil, loginHint(err)
	}
	return ctrl, nil
}

func loginHint(err error) error {
	if session.RequiresLogin(err) {
		return fmt.Errorf("%w: run `dopaflow login` first", err)
	}
	return err
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid opportunity id %q", raw)
	}
	return id, nil
}

// printCard renders the card of opp followed by the banners it produced.
func printCard(cmd *cobra.Command, ctrl *board.Controller, opp domain.Opportunity) error {
	if err := renderCard(cmd.OutOrStdout(), ctrl.CardFor(opp)); err != nil {
		return err
	}
	renderBanners(cmd.OutOrStdout(), ctrl.View().Banners)
	return nil
}

func newShowCmd() *cobra.Command {
	var (
		tab, sortKey string
		desc         bool
		priority     string
		stage        string
		minValue     float64
		maxValue     float64
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board grouped by stage, or one sorted stage tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			filters := board.Filters{
				Priority: domain.Priority(strings.ToUpper(priority)),
				Stage:    domain.Stage(strings.ToUpper(stage)),
			}
			if cmd.Flags().Changed("min") {
				filters.MinValue = &minValue
			}
			if cmd.Flags().Changed("max") {
				filters.MaxValue = &maxValue
			}
			if !filters.IsZero() {
				if err := ctrl.SetFilters(filters); err != nil {
					return err
				}
				ctrl.ApplyFilters()
			}

			if tab != "" {
				s, err := domain.ParseStage(tab)
				if err != nil {
					return err
				}
				if err := ctrl.SelectTab(s); err != nil {
					return err
				}
			}
			if sortKey != "" {
				key, err := board.ParseSortKey(sortKey)
				if err != nil {
					return err
				}
				state := ctrl.ToggleSort(key)
				if desc && state.Ascending {
					ctrl.ToggleSort(key)
				}
			}

			return renderBoard(cmd.OutOrStdout(), ctrl.View(), tab != "" || sortKey != "")
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "show one stage tab (PROSPECTION, QUALIFICATION, NEGOTIATION, CLOSED)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort the tab by value, progress, priority or status")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&priority, "priority", "", "only this priority")
	cmd.Flags().StringVar(&stage, "stage", "", "only this stage")
	cmd.Flags().Float64Var(&minValue, "min", 0, "minimum value")
	cmd.Flags().Float64Var(&maxValue, "max", 0, "maximum value")
	return cmd
}

func newStageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stage <id> <stage>",
		Short: "Move an opportunity to another stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			opp, err := ctrl.ChangeStage(cmd.Context(), id, domain.Stage(strings.ToUpper(args[1])))
			if err != nil {
				return err
			}
			return printCard(cmd, ctrl, opp)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the status of a closed opportunity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			opp, err := ctrl.ChangeStatus(cmd.Context(), id, domain.Status(strings.ToUpper(args[1])))
			if err != nil {
				return err
			}
			return printCard(cmd, ctrl, opp)
		},
	}
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "progress <id> up|down",
		Short:     "Step the progress of an opportunity",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var step func(*board.Controller, context.Context, int64) (domain.Opportunity, error)
			switch args[1] {
			case "up":
				step = (*board.Controller).IncrementProgress
			case "down":
				step = (*board.Controller).DecrementProgress
			default:
				return fmt.Errorf("direction must be up or down, got %q", args[1])
			}

			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			opp, err := step(ctrl, cmd.Context(), id)
			if err != nil {
				return err
			}
			return printCard(cmd, ctrl, opp)
		},
	}
}

// formFlags binds the opportunity form fields. Unset flags stay nil/empty.
type formFlags struct {
	title, priority, stage, status string
	value                          float64
	progress                       int
	contact                        int64
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "title")
	cmd.Flags().Float64Var(&f.value, "value", 0, "value in TND")
	cmd.Flags().StringVar(&f.priority, "priority", "", "HIGH, MEDIUM or LOW")
	cmd.Flags().IntVar(&f.progress, "progress", 0, "progress percentage")
	cmd.Flags().StringVar(&f.stage, "stage", "", "stage")
	cmd.Flags().StringVar(&f.status, "status", "", "status (closed opportunities)")
	cmd.Flags().Int64Var(&f.contact, "contact", 0, "contact id")
}

// apply copies the flags that were set onto form.
func (f *formFlags) apply(cmd *cobra.Command, form *domain.OpportunityForm) {
	changed := cmd.Flags().Changed
	if changed("title") {
		form.Title = f.title
	}
	if changed("value") {
		form.Value = &f.value
	}
	if changed("priority") {
		form.Priority = strings.ToUpper(f.priority)
	}
	if changed("progress") {
		form.Progress = &f.progress
	}
	if changed("stage") {
		form.Stage = strings.ToUpper(f.stage)
	}
	if changed("status") {
		form.Status = strings.ToUpper(f.status)
	}
	if changed("contact") {
		form.ContactID = &f.contact
	}
}

func newCreateCmd() *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an opportunity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			var form domain.OpportunityForm
			flags.apply(cmd, &form)
			opp, err := ctrl.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			return printCard(cmd, ctrl, opp)
		},
	}
	flags.register(cmd)
	return cmd
}

// confirm asks prompt on stdin unless yes is set. Anything but y/yes declines.
func confirm(cmd *cobra.Command, prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// settle confirms or cancels the pending change.
func settle(cmd *cobra.Command, ctrl *board.Controller, pending board.Pending, yes bool) (domain.Opportunity, bool, error) {
	ok, err := confirm(cmd, pending.Prompt, yes)
	if err != nil {
		return domain.Opportunity{}, false, err
	}
	if !ok {
		ctrl.CancelPending()
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return domain.Opportunity{}, false, nil
	}
	opp, err := ctrl.Confirm(cmd.Context())
	return opp, true, err
}

func newUpdateCmd() *cobra.Command {
	var (
		flags formFlags
		yes   bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an opportunity you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			var form domain.OpportunityForm
			flags.apply(cmd, &form)
			pending, err := ctrl.RequestUpdate(id, form)
			if err != nil {
				return err
			}
			opp, done, err := settle(cmd, ctrl, pending, yes)
			if err != nil || !done {
				return err
			}
			return printCard(cmd, ctrl, opp)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an opportunity you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			pending, err := ctrl.RequestDelete(id)
			if err != nil {
				return err
			}
			_, done, err := settle(cmd, ctrl, pending, yes)
			if err != nil || !done {
				return err
			}
			renderBanners(cmd.OutOrStdout(), ctrl.View().Banners)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newAssignCmd() *cobra.Command {
	var (
		flags       formFlags
		contactID   int64
		asNew       bool
		opportunity int64
	)
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Attach a contact to a new or an existing opportunity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asNew == (opportunity != 0) {
				return fmt.Errorf("pass exactly one of --new or --opportunity")
			}

			query := url.Values{
				board.QueryAssign:    {"true"},
				board.QueryContactID: {strconv.FormatInt(contactID, 10)},
			}
			ctrl, err := openBoard(cmd, query)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if ctrl.Workflow().Step != board.WorkflowChooseMode {
				return fmt.Errorf("contact %d: %w", contactID, domain.ErrNotFound)
			}

			var opp domain.Opportunity
			if asNew {
				form, err := ctrl.ChooseNewOpportunity()
				if err != nil {
					return err
				}
				flags.apply(cmd, &form)
				opp, err = ctrl.Create(cmd.Context(), form)
				if err != nil {
					return err
				}
			} else {
				if _, err := ctrl.ChooseExistingOpportunity(); err != nil {
					return err
				}
				opp, err = ctrl.SelectOpportunity(cmd.Context(), opportunity)
				if err != nil {
					return err
				}
			}
			return printCard(cmd, ctrl, opp)
		},
	}
	cmd.Flags().Int64Var(&contactID, "contact-id", 0, "contact to attach")
	_ = cmd.MarkFlagRequired("contact-id")
	cmd.Flags().BoolVar(&asNew, "new", false, "create a new opportunity for the contact")
	cmd.Flags().Int64Var(&opportunity, "opportunity", 0, "attach the contact to this opportunity")
	flags.register(cmd)
	return cmd
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks <id>",
		Short: "List the tasks of an opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			tasks, err := ctrl.Tasks(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderTasks(cmd.OutOrStdout(), tasks)
		},
	}
}

func newContactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contacts [term]",
		Short: "Search contacts by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openBoard(cmd, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			contacts, err := ctrl.SearchContacts(cmd.Context(), term)
			if err != nil {
				return err
			}
			return renderContacts(cmd.OutOrStdout(), contacts)
		},
	}
}
