package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/nobletooth/fll/pkg/list"
	"github.com/nobletooth/fll/pkg/scan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var address = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")

var commandsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "port_commands_total",
	Help: "The total number of Redis commands handled, by command",
}, []string{"command"})

// knownCommands bounds the label values of commandsMetric.
var knownCommands = []string{
	"PING", "QUIT", "LPUSH", "RPUSH", "LPOP", "RPOP", "LINDEX", "LPEEK", "LSET", "LLEN", "LRANGE",
	"LCURSOR", "LCPUSH", "LCPOP", "LDUMP", "DEL", "KEYS",
}

var (
	errWrongType  = errors.New("value is not an integer or out of range")
	errNoSuchKey  = errors.New("no such key")
	errIndexRange = errors.New("index out of range")
)

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool     // Closes the connection if true.
	writeNil        bool     // Writes a nil value if true.
	err             *string  // Error to return if set.
	writeInt        *int     // Writes an integer value if set.
	writeBulk       *string  // Writes a bulk string if set.
	writeArray      []string // Writes an array of bulk strings if `isArray` is set.
	isArray         bool
	writeString     string // Writes a simple string otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisBulk(s string) redisOutput {
	return redisOutput{writeBulk: &s}
}

func writeRedisArray(values []string) redisOutput {
	return redisOutput{writeArray: values, isArray: true}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

func wrongArgs(command string) redisOutput {
	return writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(command)))
}

// writeTo sends the output over `conn`.
func (o redisOutput) writeTo(conn redcon.Conn) {
	switch {
	case o.err != nil:
		conn.WriteError(*o.err)
	case o.writeNil:
		conn.WriteNull()
	case o.writeInt != nil:
		conn.WriteInt(*o.writeInt)
	case o.writeBulk != nil:
		conn.WriteBulkString(*o.writeBulk)
	case o.isArray:
		conn.WriteArray(len(o.writeArray))
		for _, value := range o.writeArray {
			conn.WriteBulkString(value)
		}
	default:
		conn.WriteString(o.writeString)
	}
}

// resolveIndex parses a Redis index where negative values count from the end of a list of `size` elements.
func resolveIndex(raw string, size int) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errWrongType
	}
	if index < 0 {
		index += size
	}
	return index, nil
}

type redisHandler struct {
	store *ListStore
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(store *ListStore) (*redisHandler, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil storage")
	}
	return &redisHandler{store: store}, nil
}

// readList runs `fn` on an existing list; a missing key replies nil.
func (rh *redisHandler) readList(key string, fn func(l *list.CursorList[string]) redisOutput) redisOutput {
	var output redisOutput
	err := rh.store.Do(key, false /*create*/, func(l *list.CursorList[string]) error {
		output = fn(l)
		return nil
	})
	if errors.Is(err, ErrKeyNotFound) {
		return writeRedisNil()
	}
	return output
}

// pop replies with the value removed by `popFn`, or nil when the key is missing.
func (rh *redisHandler) pop(key string, popFn func(l *list.CursorList[string]) (string, error)) redisOutput {
	return rh.readList(key, func(l *list.CursorList[string]) redisOutput {
		value, err := popFn(l)
		if err != nil {
			return writeRedisError(err)
		}
		return writeRedisBulk(value)
	})
}

// index replies with the value at `rawIndex` read by `getFn`, or nil when out of range.
func (rh *redisHandler) index(key, rawIndex string, getFn func(l *list.CursorList[string], i int) (string, error)) redisOutput {
	return rh.readList(key, func(l *list.CursorList[string]) redisOutput {
		index, err := resolveIndex(rawIndex, l.Len())
		if err != nil {
			return writeRedisError(err)
		}
		value, err := getFn(l, index)
		if errors.Is(err, list.ErrOutOfRange) {
			return writeRedisNil()
		} else if err != nil {
			return writeRedisError(err)
		}
		return writeRedisBulk(value)
	})
}

func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	command := strings.ToUpper(cmd.command)
	if slices.Contains(knownCommands, command) {
		commandsMetric.WithLabelValues(command).Inc()
	} else {
		commandsMetric.WithLabelValues("unknown").Inc()
	}

	switch command {
	case "PING":
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "LPUSH", "RPUSH":
		if len(cmd.args) < 2 {
			return wrongArgs(command)
		}
		var size int
		_ = rh.store.Do(cmd.args[0], true /*create*/, func(l *list.CursorList[string]) error {
			for _, value := range cmd.args[1:] {
				if command == "LPUSH" {
					l.PushFront(value)
				} else {
					l.PushBack(value)
				}
			}
			size = l.Len()
			return nil
		})
		return writeRedisInt(size)
	case "LPOP", "RPOP":
		if len(cmd.args) != 1 {
			return wrongArgs(command)
		}
		if command == "LPOP" {
			return rh.pop(cmd.args[0], (*list.CursorList[string]).PopFront)
		}
		return rh.pop(cmd.args[0], (*list.CursorList[string]).PopBack)
	case "LCPOP":
		if len(cmd.args) != 1 {
			return wrongArgs(command)
		}
		return rh.pop(cmd.args[0], (*list.CursorList[string]).PopAtCursor)
	case "LINDEX", "LPEEK":
		if len(cmd.args) != 2 {
			return wrongArgs(command)
		}
		if command == "LINDEX" {
			return rh.index(cmd.args[0], cmd.args[1], (*list.CursorList[string]).Get)
		}
		return rh.index(cmd.args[0], cmd.args[1], (*list.CursorList[string]).Peek)
	case "LSET":
		if len(cmd.args) != 3 {
			return wrongArgs(command)
		}
		err := rh.store.Do(cmd.args[0], false /*create*/, func(l *list.CursorList[string]) error {
			index, err := resolveIndex(cmd.args[1], l.Len())
			if err != nil {
				return err
			}
			if err := l.Set(index, cmd.args[2]); errors.Is(err, list.ErrOutOfRange) {
				return errIndexRange
			} else if err != nil {
				return err
			}
			return nil
		})
		if errors.Is(err, ErrKeyNotFound) {
			return writeRedisError(errNoSuchKey)
		} else if err != nil {
			return writeRedisError(err)
		}
		return writeRedisString(RedisOk)
	case "LLEN":
		if len(cmd.args) != 1 {
			return wrongArgs(command)
		}
		size := 0
		_ = rh.store.Do(cmd.args[0], false /*create*/, func(l *list.CursorList[string]) error {
			size = l.Len()
			return nil
		})
		return writeRedisInt(size)
	case "LRANGE":
		if len(cmd.args) != 3 {
			return wrongArgs(command)
		}
		output := rh.readList(cmd.args[0], func(l *list.CursorList[string]) redisOutput {
			start, startErr := resolveIndex(cmd.args[1], l.Len())
			stop, stopErr := resolveIndex(cmd.args[2], l.Len())
			if startErr != nil || stopErr != nil {
				return writeRedisError(errWrongType)
			}
			start, stop = max(start, 0), min(stop, l.Len()-1)
			if start > stop {
				return writeRedisArray([]string{})
			}
			values, err := l.Slice(start, stop+1)
			if err != nil {
				return writeRedisError(err)
			}
			return writeRedisArray(values)
		})
		if output.writeNil { // Missing keys are empty lists.
			return writeRedisArray([]string{})
		}
		return output
	case "LCURSOR":
		if len(cmd.args) != 1 {
			return wrongArgs(command)
		}
		return rh.readList(cmd.args[0], func(l *list.CursorList[string]) redisOutput {
			index, err := l.CursorIndex()
			if err != nil {
				return writeRedisError(err)
			}
			value, err := l.CursorValue()
			if err != nil {
				return writeRedisError(err)
			}
			return writeRedisArray([]string{strconv.Itoa(index), value})
		})
	case "LCPUSH":
		if len(cmd.args) != 2 {
			return wrongArgs(command)
		}
		var size int
		err := rh.store.Do(cmd.args[0], false /*create*/, func(l *list.CursorList[string]) error {
			if err := l.PushAtCursor(cmd.args[1]); err != nil {
				return err
			}
			size = l.Len()
			return nil
		})
		if errors.Is(err, ErrKeyNotFound) {
			return writeRedisError(errNoSuchKey)
		} else if err != nil {
			return writeRedisError(err)
		}
		return writeRedisInt(size)
	case "LDUMP":
		if len(cmd.args) != 1 {
			return wrongArgs(command)
		}
		output := rh.readList(cmd.args[0], func(l *list.CursorList[string]) redisOutput {
			return writeRedisBulk(l.String())
		})
		if output.writeNil {
			return writeRedisBulk(list.New[string]().String())
		}
		return output
	case "DEL":
		if len(cmd.args) < 1 {
			return wrongArgs(command)
		}
		deletedCount := 0
		for _, key := range cmd.args {
			if rh.store.Delete(key) {
				deletedCount++
			}
		}
		return writeRedisInt(deletedCount)
	case "KEYS":
		if len(cmd.args) != 1 {
			return wrongArgs(command)
		}
		names := slices.Collect(scan.MatchGlob(cmd.args[0], rh.store.Keys()))
		slices.Sort(names)
		if names == nil {
			names = []string{}
		}
		return writeRedisArray(names)
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// RunRedisServer starts a Redis protocol server that serves the lists kept in `store`.
func RunRedisServer(ctx context.Context, store *ListStore) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(store)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			// Convert redcon.Command to redisCommand.
			command := redisCommand{command: string(cmd.Args[0]), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			output := redisHandler.handle(command)
			output.writeTo(conn)
			if output.closeConnection {
				if err := conn.Close(); err != nil {
					slog.Error("Failed to close connection.", "error", err)
				}
			}
		},
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Debug("Accepted a Redis connection.", "remote", conn.RemoteAddr())
			return true // Accept all connections.
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("Redis connection closed with an error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()
	slog.Info("Redis port is listening.", "address", *address)

	select {
	case <-ctx.Done():
		serverErr := redisServer.Close()
		storeErr := store.Close()
		if exitErr := errors.Join(serverErr, storeErr); exitErr != nil {
			return fmt.Errorf("failed to close fll: %w", exitErr)
		}
	case err := <-serverErrSignal:
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
