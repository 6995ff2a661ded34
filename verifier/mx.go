package verifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const resolvConfPath = "/etc/resolv.conf"

// MxResolver returns the mail exchangers of a domain ordered by preference.
// An empty slice with a nil error means the domain has no exchangers.
type MxResolver interface {
	LookupMX(ctx context.Context, domain string) ([]string, error)
}

// DNSResolver queries nameservers directly for MX records.
type DNSResolver struct {
	client    *dns.Client
	tcpClient *dns.Client
	servers   []string
}

// NewDNSResolver uses the given nameservers ("host" or "host:port"), or the
// ones from /etc/resolv.conf when none are given.
func NewDNSResolver(servers ...string) (*DNSResolver, error) {
	if len(servers) == 0 {
		conf, err := dns.ClientConfigFromFile(resolvConfPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", resolvConfPath, err)
		}
		for _, s := range conf.Servers {
			servers = append(servers, net.JoinHostPort(s, conf.Port))
		}
	}

	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		normalized = append(normalized, s)
	}
	if len(normalized) == 0 {
		return nil, errors.New("no nameservers configured")
	}

	return &DNSResolver{
		client:    &dns.Client{},
		tcpClient: &dns.Client{Net: "tcp"},
		servers:   normalized,
	}, nil
}

func (r *DNSResolver) LookupMX(ctx context.Context, domain string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		in, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err == nil && in.Truncated {
			in, _, err = r.tcpClient.ExchangeContext(ctx, msg, server)
		}
		if err != nil {
			lastErr = err
			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
			return exchangersFromAnswer(in.Answer), nil
		case dns.RcodeNameError:
			return []string{}, nil
		default:
			lastErr = fmt.Errorf("server %s answered %s", server, dns.RcodeToString[in.Rcode])
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrMxResolution, domain, lastErr)
}

func exchangersFromAnswer(answer []dns.RR) []string {
	records := make([]*dns.MX, 0, len(answer))
	for _, rr := range answer {
		if mx, ok := rr.(*dns.MX); ok {
			records = append(records, mx)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Preference < records[j].Preference
	})

	hosts := make([]string, 0, len(records))
	for _, mx := range records {
		host := strings.TrimSuffix(mx.Mx, ".")
		if host == "" {
			continue
		}
		hosts = append(hosts, host)
	}
	return hosts
}

type mxEntry struct {
	hosts []string
	err   error
}

// MxCache memoizes MX lookups for the life of the process. Failures are
// cached as well as successes, and entries never expire.
type MxCache struct {
	resolver MxResolver
	log      *logrus.Entry

	mu      sync.RWMutex
	entries map[string]mxEntry
	group   singleflight.Group
}

func NewMxCache(resolver MxResolver, log *logrus.Entry) *MxCache {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &MxCache{
		resolver: resolver,
		log:      log.WithField("component", "mx_cache"),
		entries:  make(map[string]mxEntry),
	}
}

func (c *MxCache) LookupMX(ctx context.Context, domain string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(domain))

	if e, ok := c.get(key); ok {
		mxCacheRequests.WithLabelValues("hit").Inc()
		return slices.Clone(e.hosts), e.err
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		if e, ok := c.get(key); ok {
			return e, nil
		}

		mxCacheRequests.WithLabelValues("miss").Inc()
		hosts, err := c.resolver.LookupMX(ctx, key)
		if err != nil && !errors.Is(err, ErrMxResolution) {
			err = fmt.Errorf("%w: %s: %v", ErrMxResolution, key, err)
		}
		c.log.WithFields(logrus.Fields{
			"domain": key,
			"hosts":  hosts,
			"error":  err,
		}).Debug("mx lookup completed")

		e := mxEntry{hosts: hosts, err: err}
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return e, nil
	})

	e := v.(mxEntry)
	return slices.Clone(e.hosts), e.err
}

func (c *MxCache) get(key string) (mxEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Len returns the number of cached domains.
func (c *MxCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops every cached domain.
func (c *MxCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]mxEntry)
	c.mu.Unlock()
}
