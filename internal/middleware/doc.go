// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

// Package middleware provides HTTP middleware for the diagnostics
// listener: request ID propagation and structured access logging.
//
// Both middlewares use the standard func(http.Handler) http.Handler
// shape and compose with chi's Use:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.AccessLog)
package middleware
