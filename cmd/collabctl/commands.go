package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/cache"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.db.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func NewUsersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage directory users",
	}

	var tenant, email, name, avatar string
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a user to a tenant directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := services.NewUserService(e.db).Create(ctx, tenantID, email, name, avatar)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, user, func(w io.Writer) {
				fmt.Fprintf(w, "created user %s (%s)\n", user.ID, user.Email)
			})
		},
	}
	create.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	create.Flags().StringVar(&email, "email", "", "email address")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&avatar, "avatar", "", "avatar url")
	_ = create.MarkFlagRequired("tenant")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}

func NewTokenCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and prune API tokens",
	}

	var tenant, email string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access and refresh token pair for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := services.NewUserService(e.db).GetByEmail(ctx, tenantID, email)
			if err != nil {
				return err
			}

			jwtService := services.NewJWTService(e.cfg.JWTSecret, e.cfg.JWTAccessExpiry, e.cfg.JWTRefreshExpiry)
			pair, err := jwtService.GenerateTokenPair(user.ID, user.TenantID, user.Email)
			if err != nil {
				return err
			}
			expiresAt := time.Now().Add(jwtService.RefreshExpiry())
			if err := services.NewTokenService(e.db).Store(ctx, user.ID, pair.RefreshToken, expiresAt); err != nil {
				return fmt.Errorf("store refresh token: %w", err)
			}

			resp := dto.TokenResponse{
				AccessToken:  pair.AccessToken,
				RefreshToken: pair.RefreshToken,
				ExpiresIn:    pair.ExpiresIn,
			}
			return emit(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				fmt.Fprintf(w, "access_token:  %s\nrefresh_token: %s\nexpires_in:    %ds\n",
					resp.AccessToken, resp.RefreshToken, resp.ExpiresIn)
			})
		},
	}
	issue.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	issue.Flags().StringVar(&email, "email", "", "user email")
	_ = issue.MarkFlagRequired("tenant")
	_ = issue.MarkFlagRequired("email")

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired refresh tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := services.NewTokenService(e.db).CleanupExpired(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, map[string]int64{"removed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %d expired refresh tokens\n", n)
			})
		},
	}

	cmd.AddCommand(issue, cleanup)
	return cmd
}

func NewSharesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "Share maintenance",
	}

	expire := &cobra.Command{
		Use:   "expire",
		Short: "Deactivate shares past their expiration date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			content := services.NewContentService(e.db)
			svc := services.NewShareService(e.db, content, cache.NopShareTokens{}, e.log)
			n, err := svc.DeactivateExpired(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, map[string]int64{"deactivated": n}, func(w io.Writer) {
				fmt.Fprintf(w, "deactivated %d expired shares\n", n)
			})
		},
	}

	cmd.AddCommand(expire)
	return cmd
}

func NewTimelineCommand(opts *RootOptions) *cobra.Command {
	var tenant, collaboration string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the audit timeline of a collaboration",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			id, err := uuid.Parse(collaboration)
			if err != nil {
				return fmt.Errorf("invalid --collaboration: %w", err)
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			svc := services.NewCollaborationService(e.db, services.NewContentService(e.db), e.log)
			collab, err := svc.GetByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, collab.Timeline, func(w io.Writer) {
				writeTimeline(w, collab.Timeline)
			})
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	cmd.Flags().StringVar(&collaboration, "collaboration", "", "collaboration id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("collaboration")

	return cmd
}

func writeTimeline(w io.Writer, entries []models.TimelineEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tUSER\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.Timestamp.UTC().Format(time.RFC3339), e.Action, e.UserID, formatDetails(e.Details))
	}
	_ = tw.Flush()
}

func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, details[k])
	}
	return strings.Join(parts, " ")
}
