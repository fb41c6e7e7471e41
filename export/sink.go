package export

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

var ErrDestinationUnavailable = errors.New("export destination unavailable")

// Sink stores one named artifact.
type Sink interface {
	Put(name string, data []byte) error
}

// DirSink writes artifacts into Dir. With CreateDirs the directory is created on demand.
type DirSink struct {
	Dir        string
	CreateDirs bool
}

func (s DirSink) Put(name string, data []byte) error {
	if strings.TrimSpace(s.Dir) == "" {
		return fmt.Errorf("%w: no path provided", ErrDestinationUnavailable)
	}
	if s.CreateDirs {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrDestinationUnavailable, err)
		}
	}
	info, err := os.Stat(s.Dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDestinationUnavailable, s.Dir)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationUnavailable, err)
	}
	return nil
}

// FileSink splits a full file path into a directory sink and the file name.
func FileSink(path string) (DirSink, string) {
	if strings.TrimSpace(path) == "" {
		return DirSink{}, ""
	}
	return DirSink{Dir: filepath.Dir(path)}, filepath.Base(path)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// photos above this size are sent as documents
const maxSizePhoto = 150000

// TelegramSink mirrors artifacts into a chat.
type TelegramSink struct {
	api    sender
	chatID int64
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	log.Printf("Authorized on account %s", bot.Self.UserName)
	return &TelegramSink{api: bot, chatID: chatID}, nil
}

func (s *TelegramSink) Put(name string, data []byte) error {
	file := tgbotapi.FileBytes{Name: name, Bytes: data}

	var msg tgbotapi.Chattable
	if strings.HasSuffix(name, ".png") && len(data) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(s.chatID, file)
		photo.Caption = name
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(s.chatID, file)
		doc.Caption = name
		msg = doc
	}
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("%w: telegram: %v", ErrDestinationUnavailable, err)
	}
	return nil
}

// Tee writes to Primary and then to every mirror. Only a Primary failure is returned;
// mirror failures are logged.
type Tee struct {
	Primary Sink
	Mirrors []Sink
}

func (t Tee) Put(name string, data []byte) error {
	if err := t.Primary.Put(name, data); err != nil {
		return err
	}
	for _, m := range t.Mirrors {
		if err := m.Put(name, data); err != nil {
			log.Printf("export mirror %s: %v", name, err)
		}
	}
	return nil
}
