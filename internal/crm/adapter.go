package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/scoring"
)

const (
	isoMillis = "2006-01-02T15:04:05.000Z07:00"

	// tagFlightTimeout bounds a shared tag lookup plus create
	tagFlightTimeout = 10 * time.Second
)

// ProfileAttributes is the lead snapshot mirrored into a Klaviyo profile.
// Nil fields are omitted from the update.
type ProfileAttributes struct {
	Email       string
	AnonymousID string
	LeadScore   int
	Stage       domain.Stage
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	Referrer    *string
	FirstSeen   *time.Time
	LastSeen    *time.Time
	DurationMs  *int64
}

type resource struct {
	Type       string      `json:"type"`
	ID         string      `json:"id,omitempty"`
	Attributes interface{} `json:"attributes,omitempty"`
}

type resourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type listResponse struct {
	Data []resourceRef `json:"data"`
}

type singleResponse struct {
	Data resourceRef `json:"data"`
}

// Adapter mirrors leads into Klaviyo profiles, stage tags and milestone events
type Adapter struct {
	client *Client
	tags   *TagCache
	group  singleflight.Group
	policy *scoring.Policy
	log    *zap.Logger
	now    func() time.Time
}

// NewAdapter creates a CRM adapter. The tag cache is injected so that its
// lifetime is owned by the caller.
func NewAdapter(client *Client, tags *TagCache, policy *scoring.Policy, log *zap.Logger) *Adapter {
	return &Adapter{
		client: client,
		tags:   tags,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// Enabled reports whether sync is configured. When false every operation is
// a no-op.
func (a *Adapter) Enabled() bool {
	return a.client != nil && a.client.Configured()
}

// UpsertProfile patches the profile matching attrs.Email or creates it, and
// returns its id. It returns "" without error when sync is disabled or the
// email is empty.
func (a *Adapter) UpsertProfile(ctx context.Context, attrs ProfileAttributes) (string, error) {
	if attrs.Email == "" || !a.Enabled() {
		return "", nil
	}

	attributes := map[string]interface{}{
		"email":      attrs.Email,
		"properties": a.profileProperties(attrs),
	}

	existingID, err := a.findProfileID(ctx, attrs.Email)
	if err != nil {
		return "", err
	}

	if existingID != "" {
		_, err := a.client.Do(ctx, http.MethodPatch, "/profiles/"+existingID+"/", map[string]interface{}{
			"data": resource{Type: "profile", ID: existingID, Attributes: attributes},
		}, nil)
		if err != nil {
			return "", fmt.Errorf("failed to update klaviyo profile: %w", err)
		}
		return existingID, nil
	}

	var created singleResponse
	if _, err := a.client.Do(ctx, http.MethodPost, "/profiles/", map[string]interface{}{
		"data": resource{Type: "profile", Attributes: attributes},
	}, &created); err != nil {
		return "", fmt.Errorf("failed to create klaviyo profile: %w", err)
	}

	return created.Data.ID, nil
}

// ApplyStageTag adds the tag for newStage to the profile. When the stage
// changed, the previous stage's tag is removed on a best-effort basis.
func (a *Adapter) ApplyStageTag(ctx context.Context, profileID string, newStage, previousStage domain.Stage) error {
	tagName := a.policy.StageTag(newStage)
	if profileID == "" || tagName == "" || !a.Enabled() {
		return nil
	}

	tagID, err := a.ensureTagID(ctx, tagName)
	if err != nil {
		return err
	}
	if tagID == "" {
		a.log.Warn("Klaviyo tag could not be resolved", zap.String("tag", tagName))
		return nil
	}

	if _, err := a.client.Do(ctx, http.MethodPost, "/tags/"+tagID+"/relationships/profiles/", map[string]interface{}{
		"data": []resourceRef{{Type: "profile", ID: profileID}},
	}, nil); err != nil {
		return fmt.Errorf("failed to tag klaviyo profile: %w", err)
	}

	if previousStage == "" || previousStage == newStage {
		return nil
	}

	a.removeStageTag(ctx, profileID, previousStage)
	return nil
}

func (a *Adapter) removeStageTag(ctx context.Context, profileID string, stage domain.Stage) {
	oldTagName := a.policy.StageTag(stage)
	if oldTagName == "" {
		return
	}

	oldTagID, err := a.ensureTagID(ctx, oldTagName)
	if err != nil || oldTagID == "" {
		a.log.Warn("Klaviyo tag removal failed",
			zap.String("tag", oldTagName),
			zap.String("profile_id", profileID),
			zap.Error(err))
		return
	}

	if _, err := a.client.Do(ctx, http.MethodDelete, "/tags/"+oldTagID+"/relationships/profiles/", map[string]interface{}{
		"data": []resourceRef{{Type: "profile", ID: profileID}},
	}, nil); err != nil {
		a.log.Warn("Klaviyo tag removal failed",
			zap.String("tag", oldTagName),
			zap.String("profile_id", profileID),
			zap.Error(err))
	}
}

// EmitMilestoneEvent records the milestone metric against the profile
func (a *Adapter) EmitMilestoneEvent(ctx context.Context, profileID string, properties map[string]interface{}) error {
	if profileID == "" || !a.Enabled() {
		return nil
	}
	if properties == nil {
		properties = map[string]interface{}{}
	}

	body := map[string]interface{}{
		"data": resource{
			Type: "event",
			Attributes: map[string]interface{}{
				"profile": map[string]interface{}{
					"data": resourceRef{Type: "profile", ID: profileID},
				},
				"metric": map[string]interface{}{
					"data": resource{
						Type:       "metric",
						Attributes: map[string]string{"name": a.policy.MilestoneMetric},
					},
				},
				"properties": properties,
				"time":       a.now().UTC().Format(isoMillis),
			},
		},
	}

	if _, err := a.client.Do(ctx, http.MethodPost, "/events/", body, nil); err != nil {
		return fmt.Errorf("failed to emit klaviyo milestone event: %w", err)
	}
	return nil
}

func (a *Adapter) findProfileID(ctx context.Context, email string) (string, error) {
	var found listResponse
	path := "/profiles/?" + filterQuery("email", email)
	if _, err := a.client.Do(ctx, http.MethodGet, path, nil, &found); err != nil {
		return "", fmt.Errorf("failed to look up klaviyo profile: %w", err)
	}
	if len(found.Data) == 0 {
		return "", nil
	}
	return found.Data[0].ID, nil
}

// ensureTagID resolves a tag id through the cache, creating the tag remotely
// when it does not exist. Concurrent lookups of one name share a request that
// runs under its own deadline; each caller still gives up on its own context.
func (a *Adapter) ensureTagID(ctx context.Context, name string) (string, error) {
	if id, ok := a.tags.Get(name); ok {
		return id, nil
	}

	ch := a.group.DoChan(name, func() (interface{}, error) {
		if id, ok := a.tags.Get(name); ok {
			return id, nil
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tagFlightTimeout)
		defer cancel()

		var existing listResponse
		if _, err := a.client.Do(ctx, http.MethodGet, "/tags/?"+filterQuery("name", name), nil, &existing); err != nil {
			return "", fmt.Errorf("failed to look up klaviyo tag: %w", err)
		}
		if len(existing.Data) > 0 && existing.Data[0].ID != "" {
			a.tags.Set(name, existing.Data[0].ID)
			return existing.Data[0].ID, nil
		}

		var created singleResponse
		if _, err := a.client.Do(ctx, http.MethodPost, "/tags/", map[string]interface{}{
			"data": resource{Type: "tag", Attributes: map[string]string{"name": name}},
		}, &created); err != nil {
			return "", fmt.Errorf("failed to create klaviyo tag: %w", err)
		}
		if created.Data.ID != "" {
			a.tags.Set(name, created.Data.ID)
		}
		return created.Data.ID, nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("failed to resolve klaviyo tag %s: %w", name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (a *Adapter) profileProperties(attrs ProfileAttributes) map[string]interface{} {
	props := map[string]interface{}{
		"leki_stage":        string(attrs.Stage),
		"leki_lead_score":   attrs.LeadScore,
		"leki_anonymous_id": attrs.AnonymousID,
	}

	putString(props, "leki_utm_source", attrs.UTMSource)
	putString(props, "leki_utm_medium", attrs.UTMMedium)
	putString(props, "leki_utm_campaign", attrs.UTMCampaign)
	putString(props, "leki_referrer", attrs.Referrer)

	lastSeen := a.now()
	if attrs.LastSeen != nil {
		lastSeen = *attrs.LastSeen
	}
	props["leki_last_seen"] = lastSeen.UTC().Format(isoMillis)

	if attrs.FirstSeen != nil {
		props["leki_first_seen"] = attrs.FirstSeen.UTC().Format(isoMillis)
	}
	if attrs.DurationMs != nil {
		props["leki_duration_ms"] = *attrs.DurationMs
	}
	if attrs.AnonymousID == "" {
		delete(props, "leki_anonymous_id")
	}
	if attrs.Stage == "" {
		delete(props, "leki_stage")
	}

	return props
}

func putString(props map[string]interface{}, key string, value *string) {
	if value != nil {
		props[key] = *value
	}
}

func filterQuery(field, value string) string {
	return url.Values{"filter": {fmt.Sprintf(`equals(%s,"%s")`, field, value)}}.Encode()
}
