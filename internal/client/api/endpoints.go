package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/atinyakov/familycart/internal/models"
)

// Relative endpoints of the backend.
const (
	EndpointLogin       = "user/login"
	EndpointVerifyOTP   = "user/verify_otp"
	EndpointSignup      = "user/signup"
	EndpointResendMail  = "user/resend_mail"
	EndpointProfile     = "user/profile"
	EndpointFamilyJoin  = "family/join"
	EndpointFamilyList  = "family/list"
	EndpointGroceryList = "grocery/grocery-lists/"
	EndpointGroceryItem = "grocery/grocery-items/"
)

// GroceryListEndpoint returns the detail endpoint of list id.
func GroceryListEndpoint(id int64) string {
	return fmt.Sprintf("%s%d/", EndpointGroceryList, id)
}

// GroceryItemEndpoint returns the detail endpoint of item id.
func GroceryItemEndpoint(id int64) string {
	return fmt.Sprintf("%s%d/", EndpointGroceryItem, id)
}

// GroceryItemsEndpoint returns the collection endpoint of the items of list id.
func GroceryItemsEndpoint(listID int64) string {
	return fmt.Sprintf("%s?grocery_list_id=%d", EndpointGroceryItem, listID)
}

// RequestLoginOTP asks the backend to mail a login OTP. It returns the
// backend's confirmation text.
func (c *Client) RequestLoginOTP(ctx context.Context, email string) (string, error) {
	var env models.Envelope[string]
	err := c.PostJSON(ctx, EndpointLogin, map[string]string{"email": email}, "", &env)
	return env.Payload, err
}

// VerifyOTP exchanges an emailed OTP for a bearer token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*models.OTPPayload, error) {
	var env models.Envelope[models.OTPPayload]
	params := url.Values{"email": {email}, "otp": {otp}}
	if err := c.Get(ctx, EndpointVerifyOTP, params, "", &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// Signup registers an account and triggers the verification mail.
func (c *Client) Signup(ctx context.Context, email, firstName, lastName string) (string, error) {
	form := NewForm().
		Set("first_name", firstName).
		Set("last_name", lastName).
		Set("email", email)
	var env models.Envelope[string]
	err := c.PostForm(ctx, EndpointSignup, form, "", &env)
	return env.Payload, err
}

// ResendVerification mails a fresh OTP to email.
func (c *Client) ResendVerification(ctx context.Context, email string) (string, error) {
	var env models.Envelope[string]
	err := c.Get(ctx, EndpointResendMail, url.Values{"email": {email}}, "", &env)
	return env.Payload, err
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var env models.Envelope[models.User]
	if err := c.Get(ctx, EndpointProfile, nil, token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// UpdateProfile PATCHes the fields present in form.
func (c *Client) UpdateProfile(ctx context.Context, token string, form *Form) (*models.User, error) {
	var env models.Envelope[models.User]
	if err := c.PatchForm(ctx, EndpointProfile, form, token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// JoinFamily joins the family identified by code.
func (c *Client) JoinFamily(ctx context.Context, token, code string) (*models.FamilyMember, error) {
	return c.joinFamily(ctx, token, NewForm().Set("family_code", code))
}

// CreateFamily creates a family named name and joins it as owner.
func (c *Client) CreateFamily(ctx context.Context, token, name string) (*models.FamilyMember, error) {
	return c.joinFamily(ctx, token, NewForm().Set("family_name", name))
}

func (c *Client) joinFamily(ctx context.Context, token string, form *Form) (*models.FamilyMember, error) {
	var env models.Envelope[models.FamilyMember]
	if err := c.PostForm(ctx, EndpointFamilyJoin, form, token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// Families lists the memberships of the authenticated user.
func (c *Client) Families(ctx context.Context, token string) ([]models.FamilyMember, error) {
	var env models.Envelope[[]models.FamilyMember]
	if err := c.Get(ctx, EndpointFamilyList, nil, token, &env); err != nil {
		return nil, err
	}
	return env.Payload, nil
}

// GroceryLists fetches a page of lists. An empty pageURL fetches the first page.
func (c *Client) GroceryLists(ctx context.Context, token, pageURL string) (*models.Page[models.GroceryList], error) {
	if pageURL == "" {
		pageURL = EndpointGroceryList
	}
	var page models.Page[models.GroceryList]
	if err := c.Get(ctx, pageURL, nil, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateGroceryList creates a list owned by membership.
func (c *Client) CreateGroceryList(
	ctx context.Context,
	token, name, description string,
	membership int64,
) (*models.GroceryList, error) {
	form := NewForm().
		Set("name", name).
		Set("description", description).
		SetInt("family_membership", membership)
	var env models.Envelope[models.GroceryList]
	if err := c.PostForm(ctx, EndpointGroceryList, form, token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// GroceryList fetches list id.
func (c *Client) GroceryList(ctx context.Context, token string, id int64) (*models.GroceryList, error) {
	var env models.Envelope[models.GroceryList]
	if err := c.Get(ctx, GroceryListEndpoint(id), nil, token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// UpdateGroceryList PATCHes the fields present in form.
func (c *Client) UpdateGroceryList(ctx context.Context, token string, id int64, form *Form) (*models.GroceryList, error) {
	var env models.Envelope[models.GroceryList]
	if err := c.PatchForm(ctx, GroceryListEndpoint(id), form, token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// DeleteGroceryList deletes list id.
func (c *Client) DeleteGroceryList(ctx context.Context, token string, id int64) error {
	return c.Delete(ctx, GroceryListEndpoint(id), token, nil)
}

// GroceryItems fetches a page of the items of list listID. A non-empty
// pageURL (a cursor) takes precedence over listID.
func (c *Client) GroceryItems(
	ctx context.Context,
	token string,
	listID int64,
	pageURL string,
) (*models.Page[models.GroceryItem], error) {
	if pageURL == "" {
		pageURL = GroceryItemsEndpoint(listID)
	}
	var page models.Page[models.GroceryItem]
	if err := c.Get(ctx, pageURL, nil, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ItemForm encodes every editable field of item.
func ItemForm(item models.GroceryItem) *Form {
	return NewForm().
		Set("name", item.Name).
		SetFloat("quantity", item.Quantity).
		Set("quantity_type", string(item.QuantityType)).
		Set("note", item.Note).
		SetBool("purchased", item.Purchased)
}

// CreateGroceryItem adds item to list listID.
func (c *Client) CreateGroceryItem(
	ctx context.Context,
	token string,
	listID int64,
	item models.GroceryItem,
) (*models.GroceryItem, error) {
	var env models.Envelope[models.GroceryItem]
	if err := c.PostForm(ctx, GroceryItemsEndpoint(listID), ItemForm(item), token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// UpdateGroceryItem PATCHes every editable field of a persisted item.
func (c *Client) UpdateGroceryItem(ctx context.Context, token string, item models.GroceryItem) (*models.GroceryItem, error) {
	if item.ID == nil {
		return nil, fmt.Errorf("update grocery item: item has no id")
	}
	var env models.Envelope[models.GroceryItem]
	if err := c.PatchForm(ctx, GroceryItemEndpoint(*item.ID), ItemForm(item), token, &env); err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

// DeleteGroceryItem deletes item id.
func (c *Client) DeleteGroceryItem(ctx context.Context, token string, id int64) error {
	return c.Delete(ctx, GroceryItemEndpoint(id), token, nil)
}
