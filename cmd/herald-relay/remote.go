// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bureau-foundation/herald/lib/config"
	"github.com/bureau-foundation/herald/lib/matrixsink"
	"github.com/bureau-foundation/herald/lib/sealed"
	"github.com/bureau-foundation/herald/lib/secret"
	"github.com/bureau-foundation/herald/messaging"
)

// remote is an authenticated Matrix session and the sink delivering
// through it.
type remote struct {
	session *messaging.DirectSession
	sink    *matrixsink.Sink
}

// Close releases the session's access token.
func (r *remote) Close() error {
	return r.session.Close()
}

// connectRemote builds the Matrix sink described by cfg. It returns
// nil without error when no homeserver is configured. The room itself
// is resolved later by the dispatcher's first drain pass.
func connectRemote(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*remote, error) {
	if !cfg.RemoteEnabled() {
		return nil, nil
	}

	token, err := readToken(cfg.Matrix)
	if err != nil {
		return nil, err
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.Matrix.HomeserverURL,
		HTTPClient:    &http.Client{Timeout: cfg.SendTimeout()},
		Logger:        logger,
	})
	if err != nil {
		token.Close()
		return nil, err
	}

	session, err := client.SessionFromToken(cfg.Matrix.UserID, token)
	if err != nil {
		token.Close()
		return nil, err
	}

	whoamiContext, cancel := context.WithTimeout(ctx, cfg.SendTimeout())
	defer cancel()
	userID, err := session.WhoAmI(whoamiContext)
	if err != nil {
		session.Close()
		return nil, err
	}
	if cfg.Matrix.UserID != "" && userID != cfg.Matrix.UserID {
		session.Close()
		return nil, fmt.Errorf("access token belongs to %s, not the configured %s", userID, cfg.Matrix.UserID)
	}
	logger.Info("authenticated to homeserver",
		"homeserver", cfg.Matrix.HomeserverURL,
		"user_id", userID,
		"room", cfg.Matrix.Room,
	)

	return &remote{
		session: session,
		sink:    matrixsink.New(session, logger),
	}, nil
}

// readToken loads the access token, decrypting it when an identity
// file is configured.
func readToken(matrix config.MatrixConfig) (*secret.Buffer, error) {
	if matrix.IdentityFile != "" {
		token, err := sealed.OpenFile(matrix.TokenFile, matrix.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("opening sealed token %s: %w", matrix.TokenFile, err)
		}
		return token, nil
	}
	token, err := secret.ReadFile(matrix.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("reading token %s: %w", matrix.TokenFile, err)
	}
	return token, nil
}
