package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/MrEthical07/hrauth/permission"
	"github.com/MrEthical07/hrauth/roles"
)

func (a *app) login(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	subject := fs.StringP("username", "u", "", "employee ID")
	if err := fs.Parse(args); err != nil {
		return usageError("login: %v", err)
	}
	if *subject == "" {
		return usageError("login: -u is required")
	}

	secret := a.env.Password
	if secret == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}

	target, err := a.engine.Login(ctx, *subject, secret)
	if err != nil {
		return err
	}
	user := a.engine.Session().User
	fmt.Fprintf(stdout, "logged in as %s (%s)\nhome: %s\n", user.SubjectID, user.RoleID, target)
	return nil
}

func (a *app) logout(ctx context.Context, stdout io.Writer) error {
	target, err := a.engine.Logout(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "logged out\nnext: %s\n", target)
	return nil
}

func (a *app) whoami(stdout io.Writer) error {
	sess := a.engine.Session()
	if !sess.Authenticated() {
		fmt.Fprintln(stdout, "not logged in")
		return nil
	}
	u := sess.User
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "subject\t%s\n", u.SubjectID)
	fmt.Fprintf(tw, "role\t%s\n", u.RoleID)
	fmt.Fprintf(tw, "home\t%s\n", a.engine.RoleHome(u.RoleID))
	if u.ExpiresAt > 0 {
		fmt.Fprintf(tw, "expires\t%s\n", time.Unix(u.ExpiresAt, 0).Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "permissions\t%s\n", strings.Join(u.Permissions.Sorted(), " "))
	return tw.Flush()
}

func (a *app) check(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return usageError("check: at least one path is required")
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, p := range args {
		d, guarded := a.engine.DecidePath(p)
		scope := "guarded"
		if !guarded {
			scope = "public"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p, scope, d.Verdict, d.Target)
	}
	return tw.Flush()
}

func (a *app) roles(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return usageError("roles: missing subcommand")
	}
	switch args[0] {
	case "list":
		list, err := a.client.ListRoles(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		for _, r := range list {
			fmt.Fprintf(tw, "%s\t%s\t%d keys\n", r.RoleID, r.RoleName, len(r.Permissions))
		}
		return tw.Flush()
	case "toggle":
		return a.toggle(ctx, args[1:], stdout)
	default:
		return usageError("roles: unknown subcommand %q", args[0])
	}
}

func (a *app) toggle(ctx context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("roles toggle", pflag.ContinueOnError)
	off := fs.Bool("off", false, "turn the key off instead of on")
	dryRun := fs.Bool("dry-run", false, "print the result without saving")
	if err := fs.Parse(args); err != nil {
		return usageError("roles toggle: %v", err)
	}
	if fs.NArg() != 2 {
		return usageError("roles toggle: want ROLE_ID KEY")
	}
	roleID, key := fs.Arg(0), fs.Arg(1)

	catalog, err := a.client.Catalog(ctx)
	if err != nil {
		return err
	}
	role, err := a.client.GetRole(ctx, roleID)
	if err != nil {
		return err
	}

	ed := roles.Edit(catalog, permission.DefaultRules(), a.client, role)
	before := permission.NewSet(ed.Permissions()...)
	if err := ed.Toggle(key, !*off); err != nil {
		return err
	}
	after := permission.NewSet(ed.Permissions()...)

	for _, k := range catalog.Ordered(after) {
		if !before.Has(k) {
			fmt.Fprintf(stdout, "+ %s\n", k)
		}
	}
	for _, k := range catalog.Ordered(before) {
		if !after.Has(k) {
			fmt.Fprintf(stdout, "- %s\n", k)
		}
	}
	if *dryRun {
		return nil
	}
	def, err := ed.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved %s (%d keys)\n", def.RoleID, len(def.PermissionKeys))
	return nil
}
