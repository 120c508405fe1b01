package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/client/client"
)

// ErrNotVerified is returned when the server refused the PIN, so scripts can
// branch on the exit status.
var ErrNotVerified = errors.New("not verified")

func (a *App) Verify(ctx context.Context) error {
	pin, err := GetPIN(a.in, a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.client.Verify(ctx, pin)
	if err != nil {
		return describe(err)
	}

	if res.Success {
		fmt.Fprintln(a.out, "PIN verified.")
		if res.Grant != "" {
			fmt.Fprintln(a.out, res.Grant)
		}
		return nil
	}

	fmt.Fprintln(a.out, res.Message)
	if !res.LockedUntil.IsZero() {
		fmt.Fprintf(a.out, "Locked until %s\n", res.LockedUntil.Local().Format(time.DateTime))
	}
	return fmt.Errorf("%w: %w", ErrNotVerified, res.Err())
}

func (a *App) Status(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.client.Status(ctx)
	if err != nil {
		return describe(err)
	}

	if st.IsLocked {
		fmt.Fprintln(a.out, st.Message)
		return nil
	}
	fmt.Fprintf(a.out, "Not locked. %d attempt(s) remaining.\n", st.AttemptsRemaining)
	return nil
}

func (a *App) CheckGrant(ctx context.Context, grant string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.client.CheckGrant(ctx, grant)
	if err != nil {
		return describe(err)
	}

	if !res.Valid {
		fmt.Fprintln(a.out, "Grant is not valid.")
		return ErrNotVerified
	}
	fmt.Fprintf(a.out, "Grant is valid for %s.\n", res.PrincipalID)
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		return describe(err)
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func describe(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return fmt.Errorf("%w: sign in again and pass the access token with -t", err)
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Errorf("%w: check the server address (-a)", err)
	default:
		return err
	}
}
