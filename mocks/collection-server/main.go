// Command collection-server is a stand-in for the collection endpoint. It
// speaks the relay's line protocol on PORT and lists what it received over
// HTTP on HTTP_PORT.
package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort     = "9000"
	defaultHTTPPort = "9001"

	greeting = "PbdServer ready"
	armed    = "ready for record"
	ack      = "received"
)

type record struct {
	Payload    string    `json:"payload"`
	Remote     string    `json:"remote"`
	ReceivedAt time.Time `json:"received_at"`
}

type store struct {
	mu      sync.Mutex
	records []record
}

func (s *store) add(r record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

func (s *store) list() []record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record(nil), s.records...)
}

func main() {
	port := getEnv("PORT", defaultPort)
	httpPort := getEnv("HTTP_PORT", defaultHTTPPort)
	st := &store{}

	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy", "service": "collection-server"})
	})
	mux.HandleFunc("/records", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, st.list())
	})
	go func() {
		log.Fatal(http.ListenAndServe(":"+httpPort, mux))
	}()

	log.Printf("Mock collection server: records on :%s, listing on :%s/records", port, httpPort)
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			continue
		}
		go serve(conn, st)
	}
}

// serve runs one exchange: greet, wait for "trigger", read one record, ack.
func serve(conn net.Conn, st *store) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	rd := bufio.NewReader(conn)

	if _, err := conn.Write([]byte(greeting + "\n")); err != nil {
		return
	}
	line, err := rd.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "trigger" {
		log.Printf("%s: expected trigger, got %q", conn.RemoteAddr(), line)
		return
	}
	if _, err := conn.Write([]byte(armed + "\n")); err != nil {
		return
	}
	payload, err := rd.ReadString('\n')
	if err != nil {
		log.Printf("%s: no record: %v", conn.RemoteAddr(), err)
		return
	}
	payload = strings.TrimRight(payload, "\r\n")
	st.add(record{Payload: payload, Remote: conn.RemoteAddr().String(), ReceivedAt: time.Now().UTC()})
	log.Printf("record: %s", payload)
	_, _ = conn.Write([]byte(ack + "\n"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
