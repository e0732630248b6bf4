package dto

import (
	"pulse.app/engine/internal/domain"
)

type NarrativeResponse struct {
	Insight     string   `json:"insight"`
	Explanation string   `json:"explanation"`
	Suggestions []string `json:"suggestions"`
}

type BlockSnapshotResponse struct {
	Block       string            `json:"block"`
	Score       *int              `json:"score"`
	Trend       string            `json:"trend"`
	Narrative   NarrativeResponse `json:"narrative"`
	Source      string            `json:"source"`
	ErrorReason string            `json:"error_reason,omitempty"`
	AsOfDate    string            `json:"as_of_date"`
	HasData     bool              `json:"has_data"`
}

func ToBlockSnapshotResponse(s *domain.BlockSnapshot) *BlockSnapshotResponse {
	return &BlockSnapshotResponse{
		Block:       string(s.Block),
		Score:       scoreValue(s.Score),
		Trend:       string(s.Trend),
		Narrative:   toNarrativeResponse(s.Narrative),
		Source:      string(s.Source),
		ErrorReason: s.ErrorReason,
		AsOfDate:    string(s.AsOfDate),
		HasData:     s.HasData(),
	}
}

type CompositeSnapshotResponse struct {
	PerBlock    map[string]*int   `json:"per_block"`
	Combined    *int              `json:"combined"`
	BlockCount  int               `json:"block_count"`
	Synthesis   NarrativeResponse `json:"synthesis"`
	Source      string            `json:"source"`
	ErrorReason string            `json:"error_reason,omitempty"`
	AsOfDate    string            `json:"as_of_date"`
	AllTime     *int              `json:"all_time,omitempty"`
}

func ToCompositeSnapshotResponse(s *domain.CompositeSnapshot, allTime *domain.Score) *CompositeSnapshotResponse {
	perBlock := make(map[string]*int, len(s.PerBlock))
	for block, score := range s.PerBlock {
		perBlock[string(block)] = scoreValue(score)
	}
	return &CompositeSnapshotResponse{
		PerBlock:    perBlock,
		Combined:    scoreValue(s.Combined),
		BlockCount:  s.BlockCount,
		Synthesis:   toNarrativeResponse(s.Synthesis),
		Source:      string(s.Source),
		ErrorReason: s.ErrorReason,
		AsOfDate:    string(s.AsOfDate),
		AllTime:     scoreValue(allTime),
	}
}

func toNarrativeResponse(n domain.Narrative) NarrativeResponse {
	return NarrativeResponse{
		Insight:     n.Insight,
		Explanation: n.Explanation,
		Suggestions: n.Suggestions,
	}
}

func scoreValue(s *domain.Score) *int {
	if s == nil {
		return nil
	}
	v := int(*s)
	return &v
}
