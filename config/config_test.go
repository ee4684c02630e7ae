package config

import (
	"testing"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should register the documented number of fields", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("history.save_on_watch")
			So(result, ShouldEqual, "history_save_on_watch")
		})
	})
}

func TestFieldEnv(t *testing.T) {
	Convey("Field Env", t, func() {
		f := Default[key.LogsWrite]

		Convey("Should be prefixed with the application name", func() {
			So(f.Env(), ShouldEqual, "MADARI_LOGS_WRITE")
		})
	})
}
