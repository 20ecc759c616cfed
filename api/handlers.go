package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

var errInternal = errors.New("internal server error")

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func composeJSONError(err error, statusCode int) string {
	jsonError := map[string]any{
		"error":  err.Error(),
		"status": statusCode,
	}
	result, err := json.Marshal(jsonError)
	if err != nil {
		log.Println(err)
		return ""
	}
	return string(result)
}

func writeError(w http.ResponseWriter, err error, statusCode int) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	fmt.Fprintln(w, composeJSONError(err, statusCode))
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	healthCheck := struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Version     string `json:"version"`
	}{
		Status:      "available",
		Environment: app.config.env,
		Version:     version,
	}
	writeJSON(w, http.StatusOK, healthCheck)
}

func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	v := newValidator()
	v.checkEmail(email)
	v.checkPassword(input.Password)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	existing, err := app.storage.getUserByEmail(email)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, errors.New("User already exists"), http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}

	u := &user{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	err = app.storage.insertUser(u)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}

	if app.mailer != nil {
		go func() {
			err := app.mailer.send(u.Email, welcomeTmpl, u)
			if err != nil {
				log.Println(err)
			}
		}()
	}

	writeJSON(w, http.StatusCreated, map[string]string{"msg": "User created successfully"})
}

func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	v := newValidator()
	v.checkCond(email != "", "email", "must be provided")
	v.checkCond(input.Password != "", "password", "must be provided")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	u, err := app.storage.getUserByEmail(email)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if u == nil || !u.IsActive {
		writeError(w, errors.New("Invalid credentials"), http.StatusUnauthorized)
		return
	}
	err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password))
	if err != nil {
		writeError(w, errors.New("Invalid credentials"), http.StatusUnauthorized)
		return
	}

	tokenStr, err := app.generateToken(u)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tokenStr,
		"user":         u,
	})
}

func (app *application) generateToken(u *user) (string, error) {
	claims := jwt.StandardClaims{
		Subject:   strconv.Itoa(u.ID),
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(tokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(app.config.jwtSecret))
}

func (app *application) privateHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	u, err := app.storage.getUserByID(userID)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if u == nil {
		writeError(w, errors.New("User not found"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"msg":  fmt.Sprintf("Welcome, %s!", u.Email),
		"user": u,
	})
}

// deleteAccountHandler removes the caller together with all of their events
// and tasks.
func (app *application) deleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	u, err := app.storage.getUserByID(userID)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if u == nil {
		writeError(w, errors.New("User not found"), http.StatusNotFound)
		return
	}
	err = app.storage.deleteUser(u)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})
}
