// Package shell is the interactive front end of the client: a line-oriented
// loop that routes between screens, runs commands against the current one
// and prints the notification banner.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/familycart/internal/client/notify"
	"github.com/atinyakov/familycart/internal/client/screens"
	"go.uber.org/zap"
)

const prompt = "familycart> "

// maxRedirects bounds how many navigations one command may chain.
const maxRedirects = 8

// Shell owns every screen controller and the current route.
type Shell struct {
	d   *screens.Deps
	in  io.Reader
	out io.Writer

	route screens.Route
	next  []screens.Route

	home      *screens.Home
	login     *screens.Login
	signup    *screens.Signup
	otp       *screens.OTP
	selection *screens.FamilySelection
	profile   *screens.Profile
	myFamily  *screens.MyFamily
	lists     *screens.GroceryLists
	detail    *screens.GroceryListDetail
	create    *screens.CreateGroceryList
}

// New creates a Shell reading commands from in and writing to out. The shell
// becomes the navigator of d.
func New(d screens.Deps, in io.Reader, out io.Writer) *Shell {
	s := &Shell{in: in, out: out}
	d.Nav = s
	s.d = &d

	s.home = screens.NewHome(s.d)
	s.login = screens.NewLogin(s.d)
	s.signup = screens.NewSignup(s.d)
	s.otp = screens.NewOTP(s.d)
	s.selection = screens.NewFamilySelection(s.d)
	s.profile = screens.NewProfile(s.d)
	s.myFamily = screens.NewMyFamily(s.d)
	s.lists = screens.NewGroceryLists(s.d)
	s.detail = screens.NewGroceryListDetail(s.d)
	s.create = screens.NewCreateGroceryList(s.d)
	return s
}

// Navigate queues a route change. It takes effect once the running command
// returns.
func (s *Shell) Navigate(to screens.Route) {
	s.next = append(s.next, to)
}

// Route returns the current route.
func (s *Shell) Route() screens.Route {
	return s.route
}

// Run starts on the home screen and executes commands until exit, the end of
// input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	banners, unsubscribe := s.d.Notify.Subscribe()
	defer unsubscribe()
	// Drop the initial value.
	<-banners

	s.Navigate(screens.RouteHome)
	s.settle(ctx)
	s.render()

	scanner := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		quit := s.exec(ctx, args)
		s.settle(ctx)
		s.printBanner(banners)
		if quit {
			fmt.Fprintln(s.out, "Bye")
			return nil
		}
		s.render()
	}
	return scanner.Err()
}

// settle enters every queued route in order.
func (s *Shell) settle(ctx context.Context) {
	for i := 0; len(s.next) > 0; i++ {
		to := s.next[0]
		s.next = s.next[1:]
		if i >= maxRedirects {
			s.d.Log.Warn("navigation loop", zap.String("route", string(to)))
			s.next = nil
			return
		}
		s.route = to
		if err := s.enter(ctx, to); err != nil {
			s.d.Log.Debug("screen entry failed", zap.String("route", string(to)), zap.Error(err))
		}
	}
}

func (s *Shell) enter(ctx context.Context, to screens.Route) error {
	switch to {
	case screens.RouteHome:
		return s.home.Enter(ctx)
	case screens.RouteLogin, screens.RouteSignup:
		return nil
	case screens.RouteOTP:
		return s.otp.Enter(ctx)
	case screens.RouteFamilySelection:
		return s.selection.Enter(ctx)
	case screens.RouteProfile:
		return s.profile.Enter(ctx)
	case screens.RouteMyFamily:
		return s.myFamily.Enter(ctx)
	case screens.RouteGroceryLists:
		return s.lists.Enter(ctx)
	case screens.RouteCreateGroceryList:
		return s.create.Enter(ctx)
	}
	if id, ok := screens.ParseGroceryListRoute(to); ok {
		s.detail = screens.NewGroceryListDetail(s.d)
		return s.detail.Enter(ctx, id)
	}
	s.Navigate(screens.RouteHome)
	return nil
}

// printBanner prints the latest notification if it changed since the last
// command.
func (s *Shell) printBanner(banners <-chan notify.Notification) {
	select {
	case n, ok := <-banners:
		if ok && !n.IsZero() {
			fmt.Fprintf(s.out, "[%s] %s\n", n.Kind, n.Message)
		}
	default:
	}
}
