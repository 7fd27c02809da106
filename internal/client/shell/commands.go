package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atinyakov/familycart/internal/client/screens"
	"github.com/atinyakov/familycart/internal/models"
	"go.uber.org/zap"
)

const helpText = `Available commands:
  home | lists | families | profile | new
  login <email> | signup <email> <first> <last> | otp <code> | resend | logout
  join <code> | create-family <name>
  profile set first_name|last_name|gender <value> | profile save
  next | prev | open <id>
  list rename <name> | list describe <text> | list save | list delete
  item add [field=value...] | item edit <n> field=value... | item save <n>
  item cancel <n> | item delete <n> | item buy <n> | item unbuy <n>
  new name <name> | new desc <text> | new item field=value... | new drop <n> | new submit
  help | exit
Item fields: name, quantity, type (Gram, Liter, Count), note, purchased.`

var errUsage = errors.New("usage")

// exec runs one command line and reports whether the shell should quit.
func (s *Shell) exec(ctx context.Context, args []string) bool {
	var err error
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "exit", "quit":
		return true
	case "home":
		s.Navigate(screens.RouteHome)
	case "login":
		err = s.cmdLogin(ctx, args[1:])
	case "signup":
		err = s.cmdSignup(ctx, args[1:])
	case "otp":
		if len(args) != 2 {
			s.usage("otp <code>")
			return false
		}
		if s.route != screens.RouteOTP {
			s.Navigate(screens.RouteOTP)
			s.settle(ctx)
		}
		err = s.otp.Submit(ctx, args[1])
	case "resend":
		err = s.otp.Resend(ctx)
	case "join":
		if len(args) != 2 {
			s.usage("join <code>")
			return false
		}
		err = s.selection.Join(ctx, args[1])
	case "create-family":
		if len(args) < 2 {
			s.usage("create-family <name>")
			return false
		}
		err = s.selection.Create(ctx, strings.Join(args[1:], " "))
	case "profile":
		err = s.cmdProfile(ctx, args[1:])
	case "families":
		s.Navigate(screens.RouteMyFamily)
	case "lists":
		s.Navigate(screens.RouteGroceryLists)
	case "next", "prev":
		err = s.cmdPage(ctx, args[0] == "next")
	case "open":
		id, ok := intArg(args, 1)
		if !ok || id <= 0 {
			s.usage("open <id>")
			return false
		}
		s.Navigate(screens.GroceryListRoute(int64(id)))
	case "list":
		err = s.cmdList(ctx, args[1:])
	case "item":
		err = s.cmdItem(ctx, args[1:])
	case "new":
		err = s.cmdNew(ctx, args[1:])
	case "logout":
		err = s.cmdLogout(ctx)
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	if err != nil && !errors.Is(err, errUsage) {
		s.d.Log.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
	}
	return false
}

func (s *Shell) usage(u string) error {
	fmt.Fprintln(s.out, "Usage:", u)
	return errUsage
}

func (s *Shell) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return s.usage("login <email>")
	}
	s.route = screens.RouteLogin
	return s.login.Submit(ctx, args[0])
}

func (s *Shell) cmdSignup(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return s.usage("signup <email> <first> <last>")
	}
	s.route = screens.RouteSignup
	return s.signup.Submit(ctx, args[0], args[1], strings.Join(args[2:], " "))
}

func (s *Shell) cmdProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.Navigate(screens.RouteProfile)
		return nil
	}
	if s.route != screens.RouteProfile {
		fmt.Fprintln(s.out, "Open your profile first.")
		return errUsage
	}
	switch args[0] {
	case "save":
		return s.profile.Submit(ctx)
	case "set":
		if len(args) < 3 && !(len(args) == 2 && args[1] == "gender") {
			return s.usage("profile set first_name|last_name|gender <value>")
		}
		value := strings.Join(args[2:], " ")
		switch args[1] {
		case "first_name":
			s.profile.SetFirstName(value)
		case "last_name":
			s.profile.SetLastName(value)
		case "gender":
			s.profile.SetGender(value)
		default:
			return s.usage("profile set first_name|last_name|gender <value>")
		}
		return nil
	}
	return s.usage("profile [set <field> <value> | save]")
}

func (s *Shell) cmdPage(ctx context.Context, forward bool) error {
	switch {
	case s.route == screens.RouteGroceryLists:
		if forward {
			return s.lists.Next(ctx)
		}
		return s.lists.Previous(ctx)
	case s.onDetail():
		if forward {
			return s.detail.NextItems(ctx)
		}
		return s.detail.PreviousItems(ctx)
	}
	fmt.Fprintln(s.out, "Nothing to page here.")
	return errUsage
}

func (s *Shell) onDetail() bool {
	_, ok := screens.ParseGroceryListRoute(s.route)
	return ok && s.detail.Items != nil
}

func (s *Shell) cmdList(ctx context.Context, args []string) error {
	if !s.onDetail() {
		fmt.Fprintln(s.out, "Open a grocery list first.")
		return errUsage
	}
	if len(args) == 0 {
		return s.usage("list rename|describe|save|delete")
	}
	switch args[0] {
	case "rename":
		s.detail.Editor.SetName(strings.Join(args[1:], " "))
		return nil
	case "describe":
		s.detail.Editor.SetDescription(strings.Join(args[1:], " "))
		return nil
	case "save":
		return s.detail.SaveList(ctx)
	case "delete":
		return s.detail.DeleteList(ctx)
	}
	return s.usage("list rename|describe|save|delete")
}

func (s *Shell) cmdItem(ctx context.Context, args []string) error {
	if !s.onDetail() {
		fmt.Fprintln(s.out, "Open a grocery list first.")
		return errUsage
	}
	if len(args) == 0 {
		return s.usage("item add|edit|save|cancel|delete|buy|unbuy ...")
	}
	if args[0] == "add" {
		i := s.detail.AddItem()
		if len(args) > 1 {
			return s.editItem(i, args[1:], s.detail.UpdateItem)
		}
		return nil
	}

	n, ok := intArg(args, 1)
	if !ok {
		return s.usage("item " + args[0] + " <n>")
	}
	i := n - 1
	switch args[0] {
	case "edit":
		return s.editItem(i, args[2:], s.detail.UpdateItem)
	case "save":
		return s.detail.SaveItem(ctx, i)
	case "cancel":
		return s.detail.CancelItem(i)
	case "delete":
		return s.detail.DeleteItem(ctx, i)
	case "buy", "unbuy":
		return s.detail.SetPurchased(ctx, i, args[0] == "buy")
	}
	return s.usage("item add|edit|save|cancel|delete|buy|unbuy ...")
}

func (s *Shell) cmdNew(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.Navigate(screens.RouteCreateGroceryList)
		return nil
	}
	if s.route != screens.RouteCreateGroceryList {
		fmt.Fprintln(s.out, "Start a new list with 'new' first.")
		return errUsage
	}
	switch args[0] {
	case "name":
		s.create.Name = strings.Join(args[1:], " ")
		return nil
	case "desc":
		s.create.Description = strings.Join(args[1:], " ")
		return nil
	case "item":
		i := s.create.AddItem()
		return s.editItem(i, args[1:], s.create.UpdateItem)
	case "drop":
		n, ok := intArg(args, 1)
		if !ok {
			return s.usage("new drop <n>")
		}
		return s.create.RemoveItem(n - 1)
	case "submit":
		_, err := s.create.Submit(ctx)
		return err
	}
	return s.usage("new name|desc|item|drop|submit")
}

func (s *Shell) cmdLogout(ctx context.Context) error {
	switch {
	case s.route == screens.RouteProfile:
		return s.profile.Logout(ctx)
	case s.route == screens.RouteMyFamily:
		return s.myFamily.Logout(ctx)
	case s.route == screens.RouteGroceryLists:
		return s.lists.Logout(ctx)
	case s.route == screens.RouteCreateGroceryList:
		return s.create.Logout(ctx)
	case s.onDetail():
		return s.detail.Logout(ctx)
	}
	return s.home.Logout(ctx)
}

func (s *Shell) editItem(i int, args []string, update func(int, func(*models.GroceryItem)) error) error {
	fields, err := parseFields(args)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return errUsage
	}
	var applyErr error
	err = update(i, func(item *models.GroceryItem) {
		applyErr = applyFields(item, fields)
	})
	if err != nil {
		fmt.Fprintln(s.out, "No such item.")
		return err
	}
	if applyErr != nil {
		fmt.Fprintln(s.out, applyErr)
		return errUsage
	}
	return nil
}

type field struct {
	key, value string
}

// parseFields reads key=value pairs. A token without '=' continues the
// previous value, so "name=whole milk" is one field.
func parseFields(args []string) ([]field, error) {
	var fields []field
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			if len(fields) == 0 {
				return nil, fmt.Errorf("expected field=value, got %q", arg)
			}
			fields[len(fields)-1].value += " " + arg
			continue
		}
		fields = append(fields, field{key: strings.ToLower(key), value: value})
	}
	return fields, nil
}

func applyFields(item *models.GroceryItem, fields []field) error {
	for _, f := range fields {
		switch f.key {
		case "name":
			item.Name = f.value
		case "quantity", "qty":
			q, err := strconv.ParseFloat(f.value, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q", f.value)
			}
			item.Quantity = q
		case "type", "quantity_type":
			item.QuantityType = parseQuantityType(f.value)
		case "note":
			item.Note = f.value
		case "purchased":
			p, err := strconv.ParseBool(f.value)
			if err != nil {
				return fmt.Errorf("invalid purchased %q", f.value)
			}
			item.Purchased = p
		default:
			return fmt.Errorf("unknown item field %q", f.key)
		}
	}
	return nil
}

// parseQuantityType matches a unit case-insensitively. Unknown units are kept
// as typed so validation reports them on save.
func parseQuantityType(v string) models.QuantityType {
	for _, qt := range []models.QuantityType{models.Gram, models.Liter, models.Count} {
		if strings.EqualFold(v, string(qt)) {
			return qt
		}
	}
	return models.QuantityType(v)
}

func intArg(args []string, i int) (int, bool) {
	if len(args) <= i {
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	return n, err == nil
}
