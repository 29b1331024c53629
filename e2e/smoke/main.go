package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	pkghttp "github.com/astro-web3/recipebox/pkg/http"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type recipeResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	CreatedByUserID string `json:"createdByUserId"`
}

type listResponse struct {
	Recipes    []recipeResponse `json:"recipes"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

func main() {
	gatewayURL := "http://localhost:3000"
	if len(os.Args) > 1 {
		gatewayURL = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := pkghttp.NewClient(
		pkghttp.WithBaseURL(gatewayURL),
		pkghttp.WithTimeout(5*time.Second),
		pkghttp.WithRetryCount(0),
	)

	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString()[:8])
	password := "SmokeTest123!"

	var signup authResponse
	resp, err := client.Post(ctx, "/auth/signup",
		pkghttp.WithBody(map[string]string{"name": "Smoke Test", "email": email, "password": password}),
		pkghttp.WithResult(&signup),
	)
	expect(resp, err, http.StatusOK, "signup")
	fmt.Printf("signed up %s (%s)\n", signup.User.Email, signup.User.ID)

	var login authResponse
	resp, err = client.Post(ctx, "/auth/login",
		pkghttp.WithBody(map[string]string{"email": email, "password": password}),
		pkghttp.WithResult(&login),
	)
	expect(resp, err, http.StatusOK, "login")

	resp, err = client.Get(ctx, "/recipes")
	expect(resp, err, http.StatusForbidden, "list without token")

	var created recipeResponse
	resp, err = client.Post(ctx, "/recipes",
		pkghttp.WithAuthToken(login.Token),
		pkghttp.WithBody(map[string]any{
			"title":       "Smoke Toast",
			"description": "Bread, heated",
			"category":    "Breakfast",
			"ingredients": []map[string]string{{"name": "Bread", "quantity": "2", "unit": "slices"}},
			"steps":       []map[string]any{{"stepNumber": 1, "instructionText": "Toast the bread"}},
		}),
		pkghttp.WithResult(&created),
	)
	expect(resp, err, http.StatusCreated, "create recipe")
	if created.CreatedByUserID != login.User.ID {
		log.Fatalf("recipe owner %q does not match user %q", created.CreatedByUserID, login.User.ID)
	}

	var list listResponse
	resp, err = client.Get(ctx, "/recipes",
		pkghttp.WithAuthToken(login.Token),
		pkghttp.WithResult(&list),
	)
	expect(resp, err, http.StatusOK, "list recipes")
	if list.Pagination.Total != 1 {
		log.Fatalf("expected exactly one recipe for a fresh user, got %d", list.Pagination.Total)
	}

	resp, err = client.Delete(ctx, "/recipes/"+created.ID, pkghttp.WithAuthToken(login.Token))
	expect(resp, err, http.StatusNoContent, "delete recipe")

	fmt.Println("smoke check passed")
}

func expect(resp *resty.Response, err error, status int, step string) {
	if err != nil {
		log.Fatalf("%s: request failed: %v", step, err)
	}
	if resp.StatusCode() != status {
		log.Fatalf("%s: expected status %d, got %d: %s", step, status, resp.StatusCode(), resp.String())
	}
}
