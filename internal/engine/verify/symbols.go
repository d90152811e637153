package verify

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

// knownSymbols maps well-known framework entry points to the import line
// that must accompany them. Only python has a meaningful table; the check
// passes through for other languages.
var knownSymbols = map[string]string{
	"FastAPI":          "from fastapi import FastAPI",
	"APIRouter":        "from fastapi import APIRouter",
	"HTTPException":    "from fastapi import HTTPException",
	"Depends":          "from fastapi import Depends",
	"BaseModel":        "from pydantic import BaseModel",
	"BaseSettings":     "from pydantic_settings import BaseSettings",
	"create_engine":    "from sqlalchemy import create_engine",
	"sessionmaker":     "from sqlalchemy.orm import sessionmaker",
	"declarative_base": "from sqlalchemy.orm import declarative_base",
	"relationship":     "from sqlalchemy.orm import relationship",
	"Column":           "from sqlalchemy import Column",
	"ForeignKey":       "from sqlalchemy import ForeignKey",
	"Flask":            "from flask import Flask",
	"jsonify":          "from flask import jsonify",
	"dataclass":        "from dataclasses import dataclass",
	"ABC":              "from abc import ABC",
	"abstractmethod":   "from abc import abstractmethod",
	"Enum":             "from enum import Enum",
	"Path":             "from pathlib import Path",
}

// checkKnownSymbols fails when a well-known symbol is used but no import
// line brings it in, naming every offender.
func (v *Verifier) checkKnownSymbols(_ context.Context, source string, _ *blueprint.Blueprint, _ *graph.ResolvedProject) Result {
	if v.opts.Language != "python" {
		return Result{Success: true, Kind: KindMissingThirdParty}
	}

	var offenders []string
	for symbol, importLine := range knownSymbols {
		if !usesSymbol(source, symbol) {
			continue
		}
		if !importsSymbol(source, symbol, moduleOf(importLine)) {
			offenders = append(offenders, fmt.Sprintf("%s (expected: %s)", symbol, importLine))
		}
	}

	if len(offenders) > 0 {
		sort.Strings(offenders)
		return Result{
			Kind:    KindMissingThirdParty,
			Message: "symbols used without a matching import: " + strings.Join(offenders, "; "),
		}
	}
	return Result{Success: true, Kind: KindMissingThirdParty}
}

// usesSymbol reports a word-boundary occurrence of symbol outside import
// lines.
func usesSymbol(source, symbol string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
			continue
		}
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// importsSymbol reports whether any import line brings the symbol in,
// either by name or via an import of its home module for qualified use.
func importsSymbol(source, symbol, module string) bool {
	symbolRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
	moduleRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(module) + `\b`)
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "import ") && !strings.HasPrefix(trimmed, "from ") {
			continue
		}
		if symbolRe.MatchString(trimmed) {
			return true
		}
		if module != "" && moduleRe.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// moduleOf extracts the module name from a "from X import Y" table entry.
func moduleOf(importLine string) string {
	fields := strings.Fields(importLine)
	if len(fields) >= 2 && fields[0] == "from" {
		return fields[1]
	}
	return ""
}
