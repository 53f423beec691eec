package mdp

import "fmt"

// RunEpisode resets env with seed and plays until the episode terminates or
// is truncated. If p also implements Updater it learns from every step.
// observe, if set, sees each transition after the update.
func RunEpisode(env Environment, enc Encoder, p Policy, seed int64, observe func(Transition)) (Episode, error) {
	obs, err := env.Reset(seed)
	if err != nil {
		return Episode{}, fmt.Errorf("reset with seed %d: %w", seed, err)
	}
	learner, learning := p.(Updater)

	var ep Episode
	state := enc.Encode(&obs)
	for {
		action := p.ChooseAction(state)
		res, err := env.Step(action)
		if err != nil {
			return ep, fmt.Errorf("step %d: %w", ep.Steps, err)
		}
		next := enc.Encode(&res.Observation)

		if learning {
			if err := learner.Update(state, action, res.Reward, next, res.Terminated); err != nil {
				return ep, err
			}
		}

		ep.Steps++
		ep.TotalReward += res.Reward
		if observe != nil {
			observe(Transition{
				State0:     state,
				Action:     action,
				State1:     next,
				Reward:     res.Reward,
				Terminated: res.Terminated,
			})
		}

		if res.Terminated || res.Truncated {
			ep.Terminated = res.Terminated
			ep.Truncated = res.Truncated
			return ep, nil
		}
		state = next
	}
}
