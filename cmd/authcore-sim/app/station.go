package app

import (
	"time"

	"github.com/spf13/viper"

	"github.com/ocppauth/core/internal/obslog"
	"github.com/ocppauth/core/pkg/authconfig"
	"github.com/ocppauth/core/pkg/authmodel"
	"github.com/ocppauth/core/pkg/authservice"
	"github.com/ocppauth/core/pkg/locallist"
	"github.com/ocppauth/core/pkg/protocol"
	"github.com/ocppauth/core/pkg/protocol/v16"
	"github.com/ocppauth/core/pkg/stationregistry"
)

var registry = stationregistry.New(buildCollaborators)

// buildCollaborators constructs a demo station's collaborators: a config
// loaded from the --config file (falling back to authconfig.Default), a
// seeded local list with one accepted and one blocked demo card, and a v1.6
// adapter pointed at the configured endpoint (or left unregistered if none
// is set, so the remote strategy's canHandle is simply false).
func buildCollaborators(stationID string) (stationregistry.Collaborators, error) {
	cfg := authconfig.Default()
	if path := viper.GetString("config"); path != "" {
		loaded, err := authconfig.LoadFile(path)
		if err != nil {
			return stationregistry.Collaborators{}, err
		}
		cfg = loaded
	}

	list := locallist.NewMemoryStore()
	expiry := time.Now().Add(24 * time.Hour)
	list.Put("CARD_A", locallist.Entry{Status: locallist.StatusAccepted, ExpiryDate: &expiry})
	list.Put("CARD_BLOCKED", locallist.Entry{Status: locallist.StatusBlocked})

	adapters := map[authmodel.OCPPVersion]protocol.Adapter{}
	if endpoint := viper.GetString("v16-endpoint"); endpoint != "" {
		adapters[authmodel.OCPPV16] = v16.New(endpoint, nil)
	}

	obslog.Infof("authcore-sim: wiring station %q (local list + %d adapter(s))", stationID, len(adapters))
	return stationregistry.Collaborators{
		Config:   cfg,
		List:     list,
		Adapters: adapters,
	}, nil
}

func getStation() (*authservice.Service, error) {
	return registry.GetInstance(viper.GetString("station"))
}
