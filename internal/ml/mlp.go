package ml

import (
	"math"
	"math/rand"

	apperrors "nse-insight/internal/errors"
)

// MLPConfig holds neural network hyperparameters.
type MLPConfig struct {
	HiddenLayers []int   `json:"hidden_layers"`
	LearningRate float64 `json:"learning_rate"`
	MaxEpochs    int     `json:"max_epochs"`
	BatchSize    int     `json:"batch_size"`
	Patience     int     `json:"patience"`
	Seed         int64   `json:"seed"`
}

// MLP is a feed-forward network with ReLU hidden layers and a softmax
// output, trained with Adam on cross-entropy loss.
type MLP struct {
	Config  MLPConfig     `json:"config"`
	Sizes   []int         `json:"sizes"`   // layer sizes including input and output
	Weights [][][]float64 `json:"weights"` // [layer][out][in]
	Biases  [][]float64   `json:"biases"`  // [layer][out]
}

// adamState holds per-parameter moment estimates during training.
type adamState struct {
	mW, vW [][][]float64
	mB, vB [][]float64
	step   int
}

// TrainMLP trains a network on pre-scaled samples. valX/valY drive early
// stopping: training halts once validation loss fails to improve for
// Patience epochs. Training is deterministic for a fixed seed.
func TrainMLP(cfg MLPConfig, trainX [][]float64, trainY []int, valX [][]float64, valY []int, numClasses int) (*MLP, error) {
	if len(trainX) == 0 || len(trainX) != len(trainY) {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientData, "mlp training")
	}
	if numClasses < 2 || cfg.LearningRate <= 0 || cfg.MaxEpochs <= 0 {
		return nil, apperrors.New("invalid mlp configuration")
	}

	inputSize := len(trainX[0])
	sizes := append([]int{inputSize}, cfg.HiddenLayers...)
	sizes = append(sizes, numClasses)

	rng := rand.New(rand.NewSource(cfg.Seed))
	net := &MLP{Config: cfg, Sizes: sizes}
	net.initWeights(rng)

	state := newAdamState(net)

	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > len(trainX) {
		batchSize = len(trainX)
	}

	bestLoss := math.Inf(1)
	var bestWeights [][][]float64
	var bestBiases [][]float64
	epochsSinceBest := 0

	order := make([]int, len(trainX))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < cfg.MaxEpochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		for start := 0; start < len(order); start += batchSize {
			end := start + batchSize
			if end > len(order) {
				end = len(order)
			}
			net.trainBatch(order[start:end], trainX, trainY, state)
		}

		valLoss := net.loss(valX, valY)
		if valLoss < bestLoss-1e-9 {
			bestLoss = valLoss
			bestWeights = cloneWeights(net.Weights)
			bestBiases = cloneBiases(net.Biases)
			epochsSinceBest = 0
		} else {
			epochsSinceBest++
			if cfg.Patience > 0 && epochsSinceBest >= cfg.Patience {
				break
			}
		}
	}

	if bestWeights != nil {
		net.Weights = bestWeights
		net.Biases = bestBiases
	}
	return net, nil
}

func (net *MLP) initWeights(rng *rand.Rand) {
	layers := len(net.Sizes) - 1
	net.Weights = make([][][]float64, layers)
	net.Biases = make([][]float64, layers)
	for l := 0; l < layers; l++ {
		in, out := net.Sizes[l], net.Sizes[l+1]
		// He initialization suits ReLU layers
		scale := math.Sqrt(2.0 / float64(in))
		net.Weights[l] = make([][]float64, out)
		net.Biases[l] = make([]float64, out)
		for o := 0; o < out; o++ {
			net.Weights[l][o] = make([]float64, in)
			for i := 0; i < in; i++ {
				net.Weights[l][o][i] = rng.NormFloat64() * scale
			}
		}
	}
}

// forward runs a full forward pass, returning pre-activation and
// activation values per layer. activations[0] is the input.
func (net *MLP) forward(input []float64) (activations [][]float64) {
	layers := len(net.Weights)
	activations = make([][]float64, layers+1)
	activations[0] = input

	for l := 0; l < layers; l++ {
		out := make([]float64, len(net.Weights[l]))
		for o, weights := range net.Weights[l] {
			z := net.Biases[l][o]
			for i, w := range weights {
				z += w * activations[l][i]
			}
			out[o] = z
		}
		if l < layers-1 {
			for o, z := range out {
				if z < 0 {
					out[o] = 0
				} else {
					out[o] = z
				}
			}
		} else {
			softmaxInPlace(out)
		}
		activations[l+1] = out
	}
	return activations
}

func (net *MLP) trainBatch(batch []int, x [][]float64, y []int, state *adamState) {
	layers := len(net.Weights)

	gradW := make([][][]float64, layers)
	gradB := make([][]float64, layers)
	for l := 0; l < layers; l++ {
		gradW[l] = make([][]float64, len(net.Weights[l]))
		gradB[l] = make([]float64, len(net.Biases[l]))
		for o := range gradW[l] {
			gradW[l][o] = make([]float64, len(net.Weights[l][o]))
		}
	}

	for _, idx := range batch {
		activations := net.forward(x[idx])

		// Softmax with cross-entropy: output delta is probs - onehot
		output := activations[layers]
		delta := make([]float64, len(output))
		copy(delta, output)
		delta[y[idx]] -= 1

		for l := layers - 1; l >= 0; l-- {
			prev := activations[l]
			for o, d := range delta {
				gradB[l][o] += d
				for i, a := range prev {
					gradW[l][o][i] += d * a
				}
			}
			if l > 0 {
				next := make([]float64, len(prev))
				for i := range prev {
					var s float64
					for o, d := range delta {
						s += d * net.Weights[l][o][i]
					}
					// ReLU derivative
					if prev[i] > 0 {
						next[i] = s
					}
				}
				delta = next
			}
		}
	}

	scale := 1.0 / float64(len(batch))
	state.step++
	lr := net.Config.LearningRate
	const beta1, beta2, eps = 0.9, 0.999, 1e-8
	bc1 := 1 - math.Pow(beta1, float64(state.step))
	bc2 := 1 - math.Pow(beta2, float64(state.step))

	for l := 0; l < layers; l++ {
		for o := range net.Weights[l] {
			for i := range net.Weights[l][o] {
				g := gradW[l][o][i] * scale
				state.mW[l][o][i] = beta1*state.mW[l][o][i] + (1-beta1)*g
				state.vW[l][o][i] = beta2*state.vW[l][o][i] + (1-beta2)*g*g
				mHat := state.mW[l][o][i] / bc1
				vHat := state.vW[l][o][i] / bc2
				net.Weights[l][o][i] -= lr * mHat / (math.Sqrt(vHat) + eps)
			}
			g := gradB[l][o] * scale
			state.mB[l][o] = beta1*state.mB[l][o] + (1-beta1)*g
			state.vB[l][o] = beta2*state.vB[l][o] + (1-beta2)*g*g
			mHat := state.mB[l][o] / bc1
			vHat := state.vB[l][o] / bc2
			net.Biases[l][o] -= lr * mHat / (math.Sqrt(vHat) + eps)
		}
	}
}

// loss computes mean cross-entropy over a sample set.
func (net *MLP) loss(x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	var total float64
	for i, row := range x {
		probs := net.PredictProba(row)
		p := probs[y[i]]
		if p < 1e-12 {
			p = 1e-12
		}
		total -= math.Log(p)
	}
	return total / float64(len(x))
}

// PredictProba returns the softmax class distribution for one sample.
func (net *MLP) PredictProba(features []float64) []float64 {
	activations := net.forward(features)
	out := activations[len(activations)-1]
	return append([]float64(nil), out...)
}

// Predict returns the most probable class for one sample.
func (net *MLP) Predict(features []float64) int {
	return argmax(net.PredictProba(features))
}

// InputSize returns the expected feature vector length.
func (net *MLP) InputSize() int {
	if len(net.Sizes) == 0 {
		return 0
	}
	return net.Sizes[0]
}

func softmaxInPlace(z []float64) {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}
	var sum float64
	for i, v := range z {
		z[i] = math.Exp(v - maxZ)
		sum += z[i]
	}
	for i := range z {
		z[i] /= sum
	}
}

func newAdamState(net *MLP) *adamState {
	layers := len(net.Weights)
	s := &adamState{
		mW: make([][][]float64, layers),
		vW: make([][][]float64, layers),
		mB: make([][]float64, layers),
		vB: make([][]float64, layers),
	}
	for l := 0; l < layers; l++ {
		out := len(net.Weights[l])
		in := len(net.Weights[l][0])
		s.mW[l] = zeroMatrix(out, in)
		s.vW[l] = zeroMatrix(out, in)
		s.mB[l] = make([]float64, out)
		s.vB[l] = make([]float64, out)
	}
	return s
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func cloneWeights(w [][][]float64) [][][]float64 {
	out := make([][][]float64, len(w))
	for l := range w {
		out[l] = make([][]float64, len(w[l]))
		for o := range w[l] {
			out[l][o] = append([]float64(nil), w[l][o]...)
		}
	}
	return out
}

func cloneBiases(b [][]float64) [][]float64 {
	out := make([][]float64, len(b))
	for l := range b {
		out[l] = append([]float64(nil), b[l]...)
	}
	return out
}
