package view

import (
	"context"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"
)

// startImages begins background loads for every portrait of the current
// scene. Without a loader or post function it does nothing.
func (c *Controller) startImages() {
	if c.loader == nil || c.post == nil {
		return
	}
	if urls := c.scene.ImageURLs(); len(urls) > 0 {
		c.spawnImages(urls)
	}
}

func (c *Controller) spawnImages(urls map[string]string) {
	if c.cancel == nil {
		ctx, cancel := context.WithCancel(c.ctx)
		c.cancel = cancel
		c.loadCtx = ctx
	}
	ctx, gen := c.loadCtx, c.gen

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		var g errgroup.Group
		g.SetLimit(c.imageLimit)
		for id, ref := range urls {
			g.Go(func() error {
				img := c.fetch(ctx, ref)
				if ctx.Err() != nil {
					return nil
				}
				c.post(func() {
					if gen == c.gen {
						c.scene.SetImage(id, img)
					}
				})
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// fetch loads one portrait, falling back to the placeholder on failure.
func (c *Controller) fetch(ctx context.Context, ref string) image.Image {
	img, err := c.loader.Load(ctx, ref)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Debug("portrait unavailable", "ref", ref, "error", err)
		}
		return c.placeholder
	}
	return img
}

// cancelImages detaches the controller from in-flight loads: they are
// cancelled and any result still queued for the event loop is dropped.
func (c *Controller) cancelImages() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.loadCtx = nil
	}
	c.gen++
}

// WaitImages blocks until background loads started so far have finished
// handing their results to the post function.
func (c *Controller) WaitImages() { c.inflight.Wait() }

// AwaitImages loads every portrait of the current scene and attaches them
// before returning. It is meant for one-shot renders with no event loop.
func (c *Controller) AwaitImages(ctx context.Context) {
	if c.loader == nil {
		return
	}
	urls := c.scene.ImageURLs()
	var (
		mu     sync.Mutex
		loaded = make(map[string]image.Image, len(urls))
		g      errgroup.Group
	)
	g.SetLimit(c.imageLimit)
	for id, ref := range urls {
		g.Go(func() error {
			img := c.fetch(ctx, ref)
			mu.Lock()
			loaded[id] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	for id, img := range loaded {
		c.scene.SetImage(id, img)
	}
}
