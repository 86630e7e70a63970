package gameserver

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"farmwatch/internal/activity"
)

// ServerInfo is the general section of dedicated-server-stats.xml.
// Nil fields were absent or unparsable.
type ServerInfo struct {
	Name      *string
	MapName   *string
	SlotsUsed *int
	SlotsMax  *int
	SaveDate  *string
}

type statsXML struct {
	Name    *string   `xml:"name,attr"`
	MapName *string   `xml:"mapName,attr"`
	Slots   *slotsXML `xml:"Slots"`
	Stats   *struct {
		SaveDate *string `xml:"saveDateFormatted,attr"`
	} `xml:"Stats"`
}

type slotsXML struct {
	Capacity *string     `xml:"capacity,attr"`
	NumUsed  *string     `xml:"numUsed,attr"`
	Players  []playerXML `xml:"Player"`
}

type playerXML struct {
	IsUsed string `xml:"isUsed,attr"`
	Name   string `xml:",chardata"`
}

func ParseServerStats(data []byte) (ServerInfo, error) {
	var doc statsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ServerInfo{}, fmt.Errorf("parse server stats: %w", err)
	}
	out := ServerInfo{Name: doc.Name, MapName: doc.MapName}
	if doc.Slots != nil {
		out.SlotsMax = atoiPtr(doc.Slots.Capacity)
		out.SlotsUsed = atoiPtr(doc.Slots.NumUsed)
	}
	if doc.Stats != nil {
		out.SaveDate = doc.Stats.SaveDate
	}
	return out, nil
}

// ParsePlayersOnline lists names from used slots, skipping the empty
// slot placeholder.
func ParsePlayersOnline(data []byte) ([]string, error) {
	var doc statsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse players: %w", err)
	}
	out := []string{}
	if doc.Slots == nil {
		return out, nil
	}
	for _, p := range doc.Slots.Players {
		if p.IsUsed != "true" {
			continue
		}
		name := strings.TrimSpace(p.Name)
		if activity.IsValidName(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// ParseFarmMoney reads statistics/money from careerSavegame.xml.
func ParseFarmMoney(data []byte) (*int, error) {
	var doc struct {
		Money *string `xml:"statistics>money"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse career savegame: %w", err)
	}
	if doc.Money == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*doc.Money), 64)
	if err != nil {
		return nil, nil
	}
	n := int(v)
	return &n, nil
}

// ParseFarmland counts the farmlands owned by farmID and the total.
func ParseFarmland(data []byte, farmID string) (owned, total int, err error) {
	var upper, lower [2]int
	err = walk(data, func(se xml.StartElement) {
		var bucket *[2]int
		switch se.Name.Local {
		case "Farmland":
			bucket = &upper
		case "farmland":
			bucket = &lower
		default:
			return
		}
		bucket[1]++
		if attr(se, "farmId") == farmID {
			bucket[0]++
		}
	})
	if err != nil {
		return 0, 0, fmt.Errorf("parse farmland: %w", err)
	}
	if upper[1] > 0 {
		return upper[0], upper[1], nil
	}
	return lower[0], lower[1], nil
}

var vehicleExclusions = []string{"pallet", "tree", "wood", "object", "trailerWood", "camera"}

// CountVehicles counts vehicles owned by farmID, ignoring props such as
// pallets and trees. It returns nil when no vehicle carries a farmId.
func CountVehicles(data []byte, farmID string) (*int, error) {
	seen, withFarm, count := 0, 0, 0
	err := walk(data, func(se xml.StartElement) {
		if se.Name.Local != "vehicle" {
			return
		}
		seen++
		owner, ok := attrOK(se, "farmId")
		if !ok {
			return
		}
		withFarm++
		if owner != farmID {
			return
		}
		if isProp(attr(se, "filename")) {
			return
		}
		count++
	})
	if err != nil {
		return nil, fmt.Errorf("parse vehicles: %w", err)
	}
	if seen > 0 && withFarm == 0 {
		return nil, nil
	}
	return &count, nil
}

type farmsXML struct {
	Farms []struct {
		FarmID string `xml:"farmId,attr"`
		Stats  []struct {
			Day   string `xml:"day,attr"`
			Items []struct {
				Value string `xml:",chardata"`
			} `xml:",any"`
		} `xml:"finances>stats"`
	} `xml:"farm"`
}

// lastMonthDay is the finances/stats entry holding the previous month.
const lastMonthDay = "4"

// ParseLastMonthProfit sums the previous month finance lines of farmID
// in farms.xml. Nil means the farm or the month is missing.
func ParseLastMonthProfit(data []byte, farmID string) (*int, error) {
	var doc farmsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse farms: %w", err)
	}
	for _, f := range doc.Farms {
		if f.FarmID != farmID {
			continue
		}
		for _, st := range f.Stats {
			if st.Day != lastMonthDay {
				continue
			}
			sum := 0.0
			for _, it := range st.Items {
				if v, err := strconv.ParseFloat(strings.TrimSpace(it.Value), 64); err == nil {
					sum += v
				}
			}
			n := int(math.RoundToEven(sum))
			return &n, nil
		}
	}
	return nil, nil
}

func walk(data []byte, fn func(xml.StartElement)) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok {
			fn(se)
		}
	}
}

func attr(se xml.StartElement, name string) string {
	v, _ := attrOK(se, name)
	return v
}

func attrOK(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func atoiPtr(s *string) *int {
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &n
}
