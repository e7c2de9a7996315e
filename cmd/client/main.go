package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/adapters/webapi"
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-machine/pkg/utils"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	status := flag.Bool("status", false, "print the current game state and exit")
	flag.Parse()
	out := termenv.NewOutput(os.Stdout)
	if *status {
		update, err := webapi.New().State(context.Background(), "http://"+*addr)
		if err != nil {
			log.Fatal(err)
		}
		printState(out, update.State)
		return
	}
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/game"}
	header := http.Header{}
	header.Set(domain.ClientUuidHeader, uuid.NewString())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatal("dial: " + err.Error())
	}
	defer func() {
		_ = conn.Close()
	}()
	client := newClient(conn, out)
	go client.handleInput()
	if err := client.receiveStates(); err != nil {
		log.Fatal(err)
	}
}

type client struct {
	conn    *websocket.Conn
	scanner *bufio.Scanner
	out     *termenv.Output
	mu      sync.Mutex
	state   domain.GameState
}

func newClient(conn *websocket.Conn, out *termenv.Output) *client {
	return &client{
		conn:    conn,
		scanner: bufio.NewScanner(os.Stdin),
		out:     out,
	}
}

func (c *client) receiveStates() error {
	for {
		_, data, err := c.conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return nil
		}
		if err != nil {
			return errors.WithMessage(err, "read msg")
		}
		msg := new(domain.Message)
		if err := jsoniter.Unmarshal(data, msg); err != nil {
			return errors.WithMessage(err, "unmarshal json msg")
		}
		if msg.Type != domain.StateMessage {
			continue
		}
		update, err := utils.UnmarshalJson[domain.StateUpdate](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "unmarshal json to 'StateUpdate' type")
		}
		c.mu.Lock()
		c.state = update.State
		c.mu.Unlock()
		printState(c.out, update.State)
	}
}

func (c *client) handleInput() {
	for c.scanner.Scan() {
		msg, quit := c.toMessage(strings.TrimSpace(c.scanner.Text()))
		if quit {
			break
		}
		if msg == nil {
			continue
		}
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Fatal(errors.WithMessage(err, "write json msg"))
		}
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		_ = c.conn.Close()
	}
}

// toMessage maps a typed line to an outbound message. Plays carry the
// player the engine recorded as current.
func (c *client) toMessage(line string) (*domain.Message, bool) {
	switch line {
	case "q":
		return nil, true
	case "r":
		return &domain.Message{Type: domain.ResetMessage}, false
	}
	pos, err := strconv.Atoi(line)
	if err != nil || pos < 1 || pos > domain.BoardSize {
		return nil, false
	}
	cell := pos - 1
	c.mu.Lock()
	player := c.state.Context.Player
	c.mu.Unlock()
	return &domain.Message{
		Type: domain.PlayMessage,
		Payload: domain.PlayPayload{
			Cell:   &cell,
			Player: player,
		},
	}, false
}

func printState(out *termenv.Output, state domain.GameState) {
	out.ClearScreen()
	for i, cell := range state.Context.Board {
		mark := styleCell(out, cell, i)
		if (i+1)%3 == 0 {
			fmt.Fprintf(out, " %s\n", mark)
			if i < 6 {
				fmt.Fprintln(out, "---+---+---")
			}
		} else {
			fmt.Fprintf(out, " %s |", mark)
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, out.String(state.Title()).Bold().String())
	if state.IsTerminal() {
		fmt.Fprintln(out, "r: reset, q: quit")
	} else {
		fmt.Fprintln(out, "1-9: play, r: reset, q: quit")
	}
}

func styleCell(out *termenv.Output, cell domain.Cell, pos int) string {
	switch cell {
	case domain.X:
		return out.String(cell.String()).Bold().Foreground(out.Color("1")).String()
	case domain.O:
		return out.String(cell.String()).Bold().Foreground(out.Color("4")).String()
	default:
		return out.String(strconv.Itoa(pos + 1)).Faint().String()
	}
}
