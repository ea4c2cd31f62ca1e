package forgelog_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/VitaliPath/forge/pkg/forgelog"
)

func TestSetLevelAppliesToLogger(t *testing.T) {
	forgelog.SetLevel("debug")
	defer forgelog.SetLevel("info")

	if forgelog.L().GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", forgelog.L().GetLevel())
	}
}

func TestSetLevelIgnoresUnknownName(t *testing.T) {
	forgelog.SetLevel("info")
	before := forgelog.L().GetLevel()
	forgelog.SetLevel("not-a-level")
	if forgelog.L().GetLevel() != before {
		t.Fatal("unknown level name should be ignored, not applied")
	}
}

func TestSetOutputSwapsLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	prior := forgelog.L()
	forgelog.SetOutput(l)
	defer forgelog.SetOutput(prior)

	forgelog.L().Info("hello")
	if buf.Len() == 0 {
		t.Fatal("expected log output to land in the swapped-in logger")
	}
}
