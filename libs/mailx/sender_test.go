package mailx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSMTPSenderBuild(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mailpit", Port: 1025, From: "desk@golfbay.local", FromName: "Golf Center"})
	m, err := s.build(Message{To: "sam@example.com", Subject: "Your Booking Confirmation", Text: "hi", HTML: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "sam@example.com" {
		t.Fatalf("unexpected To header: %v", got)
	}
	if got := m.GetHeader("From"); len(got) != 1 || !strings.Contains(got[0], "desk@golfbay.local") {
		t.Fatalf("unexpected From header: %v", got)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.Contains(buf.String(), "text/html") {
		t.Fatal("expected html alternative in rendered message")
	}
}

func TestSMTPSenderRejectsEmptyRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mailpit"})
	if err := s.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))
	if err := s.Send(context.Background(), Message{To: "sam@example.com", Subject: "hello", Text: "body"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(buf.String(), "email simulated") || !strings.Contains(buf.String(), "sam@example.com") {
		t.Fatalf("unexpected log output: %s", buf.String())
	}
	if s.ProviderID() != "log" {
		t.Fatalf("unexpected provider id %q", s.ProviderID())
	}
}
