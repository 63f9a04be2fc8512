package netmon

import (
	"context"
	"os/exec"
	"strings"
)

// ipCommand implements NeighborProber and LinkController by shelling
// out to iproute2.
type ipCommand struct{}

// Neighbors parses `ip neigh show` output. A line looks like:
//
//	192.168.12.98 dev wlan0 lladdr aa:bb:cc:dd:ee:ff REACHABLE
//	192.168.12.98 dev wlan0 FAILED
func (ipCommand) Neighbors(ctx context.Context) ([]Neighbor, error) {
	out, err := exec.CommandContext(ctx, "ip", "neigh", "show").Output()
	if err != nil {
		return nil, err
	}

	var neighbors []Neighbor

	for _, line := range strings.Split(string(out), "\n") {
		n, ok := parseNeighborLine(line)
		if ok {
			neighbors = append(neighbors, n)
		}
	}

	return neighbors, nil
}

func parseNeighborLine(line string) (Neighbor, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Neighbor{}, false
	}

	n := Neighbor{
		IP: fields[0],
		// last field is the NUD state
		State: fields[len(fields)-1],
	}

	for i := 0; i < len(fields)-1; i++ {
		if fields[i] == "dev" {
			n.Device = fields[i+1]
			break
		}
	}

	return n, true
}

// SetLink runs `ip link set dev <iface> up|down`.
func (ipCommand) SetLink(ctx context.Context, iface string, up bool) error {
	state := "down"
	if up {
		state = "up"
	}

	return exec.CommandContext(ctx, "ip", "link", "set", "dev", iface, state).
		Run()
}
